// backend/src/validation/steps.go
package validation

import (
	"fmt"
	"strings"

	"github.com/username/agentportal/backend/src/models"
)

// StepResult is the outcome of validating one wizard step. Errors block
// forward navigation and submission; warnings are surfaced but never block.
type StepResult struct {
	Errors        map[string]string   `json:"errors"`
	Warnings      map[string][]string `json:"warnings"`
	MissingFields []string            `json:"missingFields"`
	CanProceed    bool                `json:"canProceed"`
}

func newStepResult() StepResult {
	return StepResult{
		Errors:        map[string]string{},
		Warnings:      map[string][]string{},
		MissingFields: []string{},
	}
}

func (r *StepResult) addError(field, msg string) {
	r.Errors[field] = msg
	if msg == RequiredMessage {
		r.MissingFields = append(r.MissingFields, field)
	}
}

func (r *StepResult) addWarning(field, msg string) {
	r.Warnings[field] = append(r.Warnings[field], msg)
}

// MinStep and MaxStep bound the wizard.
const (
	MinStep = 1
	MaxStep = 9
)

// stepFields maps a step number to the string fields it owns. Steps with
// non-string or list content (3, 6, 9) get extra handling in ValidateStep.
var stepFields = map[int][]string{
	1: {"agentData.role", "agentData.name", "agentData.email", "agentData.phone"},
	2: {
		"propertyData.address", "propertyData.mlsNumber", "propertyData.salePrice",
		"propertyData.closingDate", "propertyData.county", "propertyData.propertyType",
		"propertyData.status", "propertyData.accessType", "propertyData.lockboxCode",
	},
	4: {
		"commissionData.totalCommissionPercentage", "commissionData.listingAgentPercentage",
		"commissionData.buyersAgentPercentage", "commissionData.brokerFee",
		"commissionData.sellerPaidAmount", "commissionData.buyerPaidAmount",
		"commissionData.sellersAssist", "commissionData.referralParty",
		"commissionData.brokerEin", "commissionData.referralFee",
		"commissionData.coordinatorFeePaidBy",
	},
	5: {
		"propertyDetails.hoaName", "propertyDetails.municipality",
		"propertyDetails.firstRightName", "propertyDetails.attorneyName",
		"propertyDetails.warrantyCompany", "propertyDetails.warrantyCost",
	},
	6: {"titleData.titleCompany", "titleData.contactName", "titleData.contactPhone"},
	7: {}, // additional info is free text, never required
	8: {}, // review
}

// recommendedFields are optional fields that draw a warning when left empty.
var recommendedFields = map[string]string{
	"agentData.email":         "Adding an email helps us reach you about this transaction",
	"agentData.phone":         "Adding a phone number helps us reach you about this transaction",
	"propertyData.accessType": "Access type helps the coordination team schedule showings",
	"titleData.titleCompany":  "Title company is recommended before submission",
	"titleData.contactName":   "A title contact name is recommended",
	"titleData.contactPhone":  "A title contact phone is recommended",
}

// ValidateStep runs every validator relevant to the given step against the
// record and partitions failures into blocking errors and warnings.
// A failing field blocks only if it is required for the current role and
// toggle state; everything else is reported as a warning.
func ValidateStep(step int, rec *models.TransactionRecord) StepResult {
	res := newStepResult()

	switch step {
	case 3:
		validateClients(rec, &res)
	case 6:
		validateStringFields(step, rec, &res)
		if !rec.Documents.DocumentsConfirmed {
			res.addError("documents.documentsConfirmed", "Please confirm the required documents")
		}
	case 9:
		validateSignature(rec, &res)
	default:
		validateStringFields(step, rec, &res)
	}

	res.CanProceed = len(res.Errors) == 0
	return res
}

// ValidateAll validates every step in order and returns the failing ones.
func ValidateAll(rec *models.TransactionRecord) map[int]StepResult {
	failed := map[int]StepResult{}
	for step := MinStep; step <= MaxStep; step++ {
		if res := ValidateStep(step, rec); !res.CanProceed {
			failed[step] = res
		}
	}
	return failed
}

func validateStringFields(step int, rec *models.TransactionRecord, res *StepResult) {
	for _, field := range stepFields[step] {
		value, ok := FieldValue(rec, field)
		if !ok {
			continue
		}
		msg := ValidateField(field, value, rec, true)
		if msg != "" {
			if IsFieldRequired(field, rec) {
				res.addError(field, msg)
			} else {
				res.addWarning(field, msg)
			}
			continue
		}
		if hint, ok := recommendedFields[field]; ok && strings.TrimSpace(value) == "" {
			res.addWarning(field, hint)
		}
		if field == "commissionData.sellersAssist" && ExceedsSanityCeiling(value) {
			res.addWarning(field, "Sellers assist amount looks unusually large, please double-check")
		}
	}
}

func validateClients(rec *models.TransactionRecord, res *StepResult) {
	if len(rec.Clients) == 0 {
		res.addError("clients", "At least one client is required")
		res.MissingFields = append(res.MissingFields, "clients")
		return
	}

	for i, c := range rec.Clients {
		prefix := fmt.Sprintf("clients.%d.", i)
		// An unnamed client is flagged but never blocks navigation; only the
		// side-match rules below are hard requirements for the list.
		if strings.TrimSpace(c.Name) == "" {
			res.addWarning(prefix+"name", "Client name is missing")
		}
		if msg := ValidateEmail(c.Email); msg != "" {
			res.addWarning(prefix+"email", msg)
		}
		if msg := ValidatePhone(c.Phone); msg != "" {
			res.addWarning(prefix+"phone", msg)
		}
		if c.Type == "" && rec.AgentData.Role == models.RoleDualAgent {
			res.addError(prefix+"type", RequiredMessage)
		}
	}

	buyers, sellers := countClientTypes(rec.Clients)
	switch rec.AgentData.Role {
	case models.RoleListingAgent:
		if sellers == 0 {
			res.addError("clients", "At least one seller client is required")
		}
	case models.RoleBuyersAgent:
		if buyers == 0 {
			res.addError("clients", "At least one buyer client is required")
		}
	case models.RoleDualAgent:
		if buyers == 0 || sellers == 0 {
			res.addWarning("clients", "Dual agency transactions usually need both a buyer and a seller")
		}
	}
}

func validateSignature(rec *models.TransactionRecord, res *StepResult) {
	if strings.TrimSpace(rec.SignatureData.Signature) == "" {
		res.addError("signatureData.signature", RequiredMessage)
	}
	if !rec.SignatureData.TermsAccepted {
		res.addError("signatureData.termsAccepted", "You must accept the terms to submit")
	}
	if !rec.SignatureData.InfoConfirmed {
		res.addError("signatureData.infoConfirmed", "Please confirm the information is accurate")
	}
}

func countClientTypes(clients []models.Client) (buyers, sellers int) {
	for _, c := range clients {
		switch c.Type {
		case models.ClientTypeBuyer:
			buyers++
		case models.ClientTypeSeller:
			sellers++
		}
	}
	return buyers, sellers
}

// FieldValue resolves a dot-separated string field path against the record.
// Only string-typed leaves are addressable; booleans and the client list are
// handled by their own validators.
func FieldValue(rec *models.TransactionRecord, field string) (string, bool) {
	switch field {
	case "agentData.role":
		return string(rec.AgentData.Role), true
	case "agentData.name":
		return rec.AgentData.Name, true
	case "agentData.email":
		return rec.AgentData.Email, true
	case "agentData.phone":
		return rec.AgentData.Phone, true
	case "propertyData.mlsNumber":
		return rec.PropertyData.MLSNumber, true
	case "propertyData.address":
		return rec.PropertyData.Address, true
	case "propertyData.salePrice":
		return rec.PropertyData.SalePrice, true
	case "propertyData.closingDate":
		return rec.PropertyData.ClosingDate, true
	case "propertyData.county":
		return rec.PropertyData.County, true
	case "propertyData.propertyType":
		return rec.PropertyData.PropertyType, true
	case "propertyData.status":
		return rec.PropertyData.Status, true
	case "propertyData.accessType":
		return rec.PropertyData.AccessType, true
	case "propertyData.lockboxCode":
		return rec.PropertyData.LockboxCode, true
	case "commissionData.totalCommissionPercentage":
		return rec.CommissionData.TotalCommissionPercentage, true
	case "commissionData.listingAgentPercentage":
		return rec.CommissionData.ListingAgentPercentage, true
	case "commissionData.buyersAgentPercentage":
		return rec.CommissionData.BuyersAgentPercentage, true
	case "commissionData.brokerFee":
		return rec.CommissionData.BrokerFee, true
	case "commissionData.sellerPaidAmount":
		return rec.CommissionData.SellerPaidAmount, true
	case "commissionData.buyerPaidAmount":
		return rec.CommissionData.BuyerPaidAmount, true
	case "commissionData.sellersAssist":
		return rec.CommissionData.SellersAssist, true
	case "commissionData.referralParty":
		return rec.CommissionData.ReferralParty, true
	case "commissionData.brokerEin":
		return rec.CommissionData.BrokerEIN, true
	case "commissionData.referralFee":
		return rec.CommissionData.ReferralFee, true
	case "commissionData.coordinatorFeePaidBy":
		return rec.CommissionData.CoordinatorFeePaidBy, true
	case "propertyDetails.hoaName":
		return rec.PropertyDetails.HOAName, true
	case "propertyDetails.municipality":
		return rec.PropertyDetails.Municipality, true
	case "propertyDetails.firstRightName":
		return rec.PropertyDetails.FirstRightName, true
	case "propertyDetails.attorneyName":
		return rec.PropertyDetails.AttorneyName, true
	case "propertyDetails.warrantyCompany":
		return rec.PropertyDetails.WarrantyCompany, true
	case "propertyDetails.warrantyCost":
		return rec.PropertyDetails.WarrantyCost, true
	case "propertyDetails.warrantyPaidBy":
		return rec.PropertyDetails.WarrantyPaidBy, true
	case "titleData.titleCompany":
		return rec.TitleData.TitleCompany, true
	case "titleData.contactName":
		return rec.TitleData.ContactName, true
	case "titleData.contactPhone":
		return rec.TitleData.ContactPhone, true
	case "additionalInfo.specialInstructions":
		return rec.AdditionalInfo.SpecialInstructions, true
	case "additionalInfo.urgentIssues":
		return rec.AdditionalInfo.UrgentIssues, true
	case "additionalInfo.notes":
		return rec.AdditionalInfo.Notes, true
	case "signatureData.signature":
		return rec.SignatureData.Signature, true
	case "signatureData.agentName":
		return rec.SignatureData.AgentName, true
	case "signatureData.dateSubmitted":
		return rec.SignatureData.DateSubmitted, true
	}
	return "", false
}
