// backend/src/validation/validators.go
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/username/agentportal/backend/src/models"
)

// RequiredMessage is the error returned for an empty field that the current
// role and conditional toggles mandate.
const RequiredMessage = "This field is required"

// SellersAssistWarnCeiling is the soft sanity ceiling for the sellers assist
// amount. Values above it are flagged, never blocked.
const SellersAssistWarnCeiling = 1_000_000

// percentTolerance absorbs float formatting noise when comparing the total
// commission against the sum of its two sides.
const percentTolerance = 0.01

// ClosingDateWindowDays is how far out a closing date may be scheduled.
const ClosingDateWindowDays = 90

var (
	einPattern   = regexp.MustCompile(`^\d{2}-\d{7}$`)
	mlsPattern   = regexp.MustCompile(`^(PM-)?\d{6}$`)
	mlsPartial   = regexp.MustCompile(`^(P|PM|PM-)?\d{0,6}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
)

// ValidateEmail checks the local@domain.tld shape. Empty is accepted: email
// fields are optional and only validated when filled in.
func ValidateEmail(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return "Please enter a valid email address"
	}
	return ""
}

// ValidatePhone requires exactly 10 digits once separators are stripped.
// Empty is accepted.
func ValidatePhone(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	digits := nonDigits.ReplaceAllString(value, "")
	if len(digits) != 10 {
		return "Phone number must have 10 digits"
	}
	return ""
}

// ValidateEIN checks the broker EIN format: two digits, hyphen, seven digits.
func ValidateEIN(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if !einPattern.MatchString(strings.TrimSpace(value)) {
		return "EIN must be in the format XX-XXXXXXX"
	}
	return ""
}

// ValidateMLSNumber checks the MLS format: optional "PM-" prefix plus exactly
// six digits. While the agent is still typing (commit=false) any prefix of a
// valid number is accepted; the full pattern is enforced on commit.
func ValidateMLSNumber(value string, commit bool) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if commit {
		if !mlsPattern.MatchString(v) {
			return "MLS number must be 6 digits, optionally prefixed with PM-"
		}
		return ""
	}
	if !mlsPartial.MatchString(v) {
		return "MLS number must be 6 digits, optionally prefixed with PM-"
	}
	return ""
}

// ValidatePercentage requires a number in [0,100]. Empty is accepted here;
// requiredness is decided separately.
func ValidatePercentage(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "Please enter a valid percentage"
	}
	if f < 0 || f > 100 {
		return "Percentage must be between 0 and 100"
	}
	return ""
}

// ValidateTotalCommission applies the percentage rules and additionally
// requires listing% + buyer's% <= total% within tolerance.
func ValidateTotalCommission(value string, rec *models.TransactionRecord) string {
	if msg := ValidatePercentage(value); msg != "" {
		return msg
	}
	v := strings.TrimSpace(value)
	if v == "" || rec == nil {
		return ""
	}
	total, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return ""
	}
	listing, okL := parseOptionalFloat(rec.CommissionData.ListingAgentPercentage)
	buyers, okB := parseOptionalFloat(rec.CommissionData.BuyersAgentPercentage)
	if okL && okB && listing+buyers > total+percentTolerance {
		return "Total commission must cover the listing and buyer's side percentages"
	}
	return ""
}

// ValidateCurrency requires a non-negative amount. Empty is accepted.
func ValidateCurrency(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return "Please enter a valid amount"
	}
	if f < 0 {
		return "Amount cannot be negative"
	}
	return ""
}

// ExceedsSanityCeiling reports whether a currency value parses above the
// soft warning ceiling.
func ExceedsSanityCeiling(value string) bool {
	f, ok := parseOptionalFloat(strings.ReplaceAll(value, ",", ""))
	return ok && f > SellersAssistWarnCeiling
}

// ValidateSalePrice requires a positive amount.
func ValidateSalePrice(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return "Please enter a valid sale price"
	}
	if f <= 0 {
		return "Sale price must be greater than zero"
	}
	return ""
}

// ValidateClosingDate requires a YYYY-MM-DD date between today and today
// plus ClosingDateWindowDays, inclusive.
func ValidateClosingDate(value string, now time.Time) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return "Please enter a valid date (YYYY-MM-DD)"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	latest := today.AddDate(0, 0, ClosingDateWindowDays)
	if d.Before(today) {
		return "Closing date cannot be in the past"
	}
	if d.After(latest) {
		return fmt.Sprintf("Closing date must be within %d days", ClosingDateWindowDays)
	}
	return ""
}

// ValidateField maps a dot-separated field path and value to an error
// message, or "" when the value is acceptable. Requiredness is conditional
// on the record: role-gated fields and toggle-gated siblings are only
// mandatory while their controlling state demands them. commit=false relaxes
// format checks that legitimately fail mid-typing (MLS number).
func ValidateField(field, value string, rec *models.TransactionRecord, commit bool) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if IsFieldRequired(field, rec) {
			return RequiredMessage
		}
		return ""
	}

	switch leafOf(field) {
	case "email", "contactEmail":
		return ValidateEmail(trimmed)
	case "phone", "contactPhone":
		return ValidatePhone(trimmed)
	case "mlsNumber":
		return ValidateMLSNumber(trimmed, commit)
	case "brokerEin":
		return ValidateEIN(trimmed)
	case "totalCommissionPercentage":
		return ValidateTotalCommission(trimmed, rec)
	case "listingAgentPercentage", "buyersAgentPercentage":
		return ValidatePercentage(trimmed)
	case "salePrice":
		return ValidateSalePrice(trimmed)
	case "closingDate":
		return ValidateClosingDate(trimmed, time.Now())
	case "sellersAssist", "brokerFee", "sellerPaidAmount", "buyerPaidAmount",
		"referralFee", "warrantyCost":
		return ValidateCurrency(trimmed)
	}
	return ""
}

// IsFieldRequired decides whether a field is currently mandated, taking the
// agent role and the property-details toggles into account.
func IsFieldRequired(field string, rec *models.TransactionRecord) bool {
	if alwaysRequired[field] {
		return true
	}
	var role models.AgentRole
	if rec != nil {
		role = rec.AgentData.Role
	}
	if listingSideRequired[field] {
		return role == models.RoleListingAgent || role == models.RoleDualAgent
	}
	if rec == nil {
		return false
	}
	switch field {
	case "propertyDetails.hoaName":
		return rec.PropertyDetails.ResaleCertRequired
	case "propertyDetails.municipality":
		return rec.PropertyDetails.CORequired
	case "propertyDetails.firstRightName":
		return rec.PropertyDetails.FirstRightOfRefusal
	case "propertyDetails.attorneyName":
		return rec.PropertyDetails.AttorneyRepresentation
	case "propertyDetails.warrantyCompany", "propertyDetails.warrantyCost":
		return rec.PropertyDetails.HomeWarranty
	case "commissionData.sellersAssist":
		return rec.CommissionData.HasSellersAssist
	case "commissionData.referralParty", "commissionData.brokerEin", "commissionData.referralFee":
		return rec.CommissionData.IsReferral
	}
	if strings.HasPrefix(field, "clients.") {
		switch leafOf(field) {
		case "name":
			return true
		case "type":
			return role == models.RoleDualAgent
		}
	}
	return false
}

var alwaysRequired = map[string]bool{
	"agentData.role":            true,
	"agentData.name":            true,
	"propertyData.address":      true,
	"propertyData.salePrice":    true,
	"propertyData.closingDate":  true,
	"propertyData.county":       true,
	"propertyData.propertyType": true,
	"signatureData.signature":   true,
}

// Required only when representing the listing side (or both sides).
var listingSideRequired = map[string]bool{
	"propertyData.mlsNumber":                   true,
	"commissionData.totalCommissionPercentage": true,
	"commissionData.listingAgentPercentage":    true,
}

func leafOf(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}

func parseOptionalFloat(s string) (float64, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
