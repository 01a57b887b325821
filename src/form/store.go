// backend/src/form/store.go
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/username/agentportal/backend/src/models"
	"github.com/username/agentportal/backend/src/validation"
)

// Store holds the full transaction record for one wizard session, plus the
// current step pointer, the touched-field set, and the submission flag.
// Stores are not safe for concurrent use; the session layer serializes
// access per session.
type Store struct {
	record       *models.TransactionRecord
	currentStep  int
	touched      map[string]bool
	isSubmitting bool
}

// NewStore returns a store with an empty record positioned on step 1.
func NewStore() *Store {
	return &Store{
		record:      models.NewTransactionRecord(),
		currentStep: validation.MinStep,
		touched:     map[string]bool{},
	}
}

func (s *Store) Record() *models.TransactionRecord { return s.record }
func (s *Store) CurrentStep() int                  { return s.currentStep }
func (s *Store) IsSubmitting() bool                { return s.isSubmitting }

// TouchedFields returns the paths updated since the last reset or restore.
func (s *Store) TouchedFields() []string {
	fields := make([]string, 0, len(s.touched))
	for f := range s.touched {
		fields = append(fields, f)
	}
	return fields
}

// HasTouched reports whether any field changed since the last save point.
// The autosaver uses it to skip idle sessions.
func (s *Store) HasTouched() bool { return len(s.touched) > 0 }

// MarkSaved clears the touched set after a successful draft save.
func (s *Store) MarkSaved() { s.touched = map[string]bool{} }

// Reset destroys the record and returns the wizard to step 1.
func (s *Store) Reset() {
	s.record = models.NewTransactionRecord()
	s.currentStep = validation.MinStep
	s.touched = map[string]bool{}
	s.isSubmitting = false
}

// Restore replaces the store contents with a persisted draft.
func (s *Store) Restore(d *models.Draft) {
	if d == nil || d.Data == nil {
		return
	}
	s.record = d.Data.Clone()
	if s.record.Clients == nil {
		s.record.Clients = []models.Client{}
	}
	step := d.CurrentStep
	if step < validation.MinStep {
		step = validation.MinStep
	}
	if step > validation.MaxStep {
		step = validation.MaxStep
	}
	s.currentStep = step
	s.touched = map[string]bool{}
	s.isSubmitting = false
}

// Snapshot returns a deep-copied draft of the current state, stamped now.
func (s *Store) Snapshot() *models.Draft {
	return &models.Draft{
		Data:        s.record.Clone(),
		CurrentStep: s.currentStep,
		Timestamp:   time.Now().UnixMilli(),
	}
}

func (s *Store) setStep(step int) { s.currentStep = step }

func (s *Store) setSubmitting(v bool) { s.isSubmitting = v }

var errUnknownField = errors.New("unknown field path")

// UpdateField updates one leaf of the record addressed by a dot-separated
// path such as "propertyData.mlsNumber", marks the path touched, and runs
// the side effects the field participates in (commission recalculation,
// client type auto-correction, conditional sibling clearing). Boolean leaves
// accept "true"/"false" strings.
func (s *Store) UpdateField(path, value string) error {
	rec := s.record
	switch path {
	// --- agent ---
	case "agentData.role":
		role := models.AgentRole(value)
		if role != models.RoleListingAgent && role != models.RoleBuyersAgent && role != models.RoleDualAgent {
			return fmt.Errorf("invalid agent role %q", value)
		}
		rec.AgentData.Role = role
		s.applyRoleToClients(role)
	case "agentData.name":
		rec.AgentData.Name = value
	case "agentData.email":
		rec.AgentData.Email = value
	case "agentData.phone":
		rec.AgentData.Phone = value

	// --- property ---
	case "propertyData.mlsNumber":
		rec.PropertyData.MLSNumber = strings.ToUpper(strings.TrimSpace(value))
	case "propertyData.address":
		rec.PropertyData.Address = value
	case "propertyData.salePrice":
		rec.PropertyData.SalePrice = value
	case "propertyData.closingDate":
		rec.PropertyData.ClosingDate = value
	case "propertyData.county":
		rec.PropertyData.County = value
	case "propertyData.propertyType":
		rec.PropertyData.PropertyType = value
	case "propertyData.status":
		rec.PropertyData.Status = value
	case "propertyData.accessType":
		rec.PropertyData.AccessType = value
	case "propertyData.lockboxCode":
		rec.PropertyData.LockboxCode = value
	case "propertyData.builtBefore1978":
		rec.PropertyData.BuiltBefore1978 = parseBool(value)
	case "propertyData.winterized":
		rec.PropertyData.Winterized = parseBool(value)
	case "propertyData.updateMls":
		rec.PropertyData.UpdateMLS = parseBool(value)

	// --- commission ---
	case "commissionData.totalCommissionPercentage":
		rec.CommissionData.TotalCommissionPercentage = clampPercentInput(value)
		s.recalcCommission(editedTotal)
	case "commissionData.listingAgentPercentage":
		rec.CommissionData.ListingAgentPercentage = clampPercentInput(value)
		s.recalcCommission(editedListing)
	case "commissionData.buyersAgentPercentage":
		rec.CommissionData.BuyersAgentPercentage = clampPercentInput(value)
		s.recalcCommission(editedBuyers)
	case "commissionData.brokerFee":
		rec.CommissionData.BrokerFee = value
	case "commissionData.sellerPaidAmount":
		rec.CommissionData.SellerPaidAmount = value
	case "commissionData.buyerPaidAmount":
		rec.CommissionData.BuyerPaidAmount = value
	case "commissionData.hasSellersAssist":
		rec.CommissionData.HasSellersAssist = parseBool(value)
		if !rec.CommissionData.HasSellersAssist {
			rec.CommissionData.SellersAssist = ""
		}
	case "commissionData.sellersAssist":
		rec.CommissionData.SellersAssist = value
	case "commissionData.isReferral":
		rec.CommissionData.IsReferral = parseBool(value)
		if !rec.CommissionData.IsReferral {
			rec.CommissionData.ReferralParty = ""
			rec.CommissionData.BrokerEIN = ""
			rec.CommissionData.ReferralFee = ""
		}
	case "commissionData.referralParty":
		rec.CommissionData.ReferralParty = value
	case "commissionData.brokerEin":
		rec.CommissionData.BrokerEIN = value
	case "commissionData.referralFee":
		rec.CommissionData.ReferralFee = value
	case "commissionData.coordinatorFeePaidBy":
		rec.CommissionData.CoordinatorFeePaidBy = value

	// --- property details (toggles clear their gated sibling on false) ---
	case "propertyDetails.resaleCertRequired":
		rec.PropertyDetails.ResaleCertRequired = parseBool(value)
		if !rec.PropertyDetails.ResaleCertRequired {
			rec.PropertyDetails.HOAName = ""
		}
	case "propertyDetails.hoaName":
		rec.PropertyDetails.HOAName = value
	case "propertyDetails.coRequired":
		rec.PropertyDetails.CORequired = parseBool(value)
		if !rec.PropertyDetails.CORequired {
			rec.PropertyDetails.Municipality = ""
		}
	case "propertyDetails.municipality":
		rec.PropertyDetails.Municipality = value
	case "propertyDetails.firstRightOfRefusal":
		rec.PropertyDetails.FirstRightOfRefusal = parseBool(value)
		if !rec.PropertyDetails.FirstRightOfRefusal {
			rec.PropertyDetails.FirstRightName = ""
		}
	case "propertyDetails.firstRightName":
		rec.PropertyDetails.FirstRightName = value
	case "propertyDetails.attorneyRepresentation":
		rec.PropertyDetails.AttorneyRepresentation = parseBool(value)
		if !rec.PropertyDetails.AttorneyRepresentation {
			rec.PropertyDetails.AttorneyName = ""
		}
	case "propertyDetails.attorneyName":
		rec.PropertyDetails.AttorneyName = value
	case "propertyDetails.homeWarranty":
		rec.PropertyDetails.HomeWarranty = parseBool(value)
		if !rec.PropertyDetails.HomeWarranty {
			rec.PropertyDetails.WarrantyCompany = ""
			rec.PropertyDetails.WarrantyCost = ""
			rec.PropertyDetails.WarrantyPaidBy = ""
		}
	case "propertyDetails.warrantyCompany":
		rec.PropertyDetails.WarrantyCompany = value
	case "propertyDetails.warrantyCost":
		rec.PropertyDetails.WarrantyCost = value
	case "propertyDetails.warrantyPaidBy":
		rec.PropertyDetails.WarrantyPaidBy = value

	// --- title ---
	case "titleData.titleCompany":
		rec.TitleData.TitleCompany = value
	case "titleData.contactName":
		rec.TitleData.ContactName = value
	case "titleData.contactPhone":
		rec.TitleData.ContactPhone = value

	// --- documents ---
	case "documents.documentsConfirmed":
		rec.Documents.DocumentsConfirmed = parseBool(value)

	// --- additional info ---
	case "additionalInfo.specialInstructions":
		rec.AdditionalInfo.SpecialInstructions = validation.StripUnprintable(value)
	case "additionalInfo.urgentIssues":
		rec.AdditionalInfo.UrgentIssues = validation.StripUnprintable(value)
	case "additionalInfo.notes":
		rec.AdditionalInfo.Notes = validation.StripUnprintable(value)

	// --- signature ---
	case "signatureData.signature":
		rec.SignatureData.Signature = value
	case "signatureData.agentName":
		rec.SignatureData.AgentName = value
	case "signatureData.termsAccepted":
		rec.SignatureData.TermsAccepted = parseBool(value)
	case "signatureData.infoConfirmed":
		rec.SignatureData.InfoConfirmed = parseBool(value)

	default:
		if strings.HasPrefix(path, "clients.") {
			return s.updateClientField(path, value)
		}
		return fmt.Errorf("%w: %s", errUnknownField, path)
	}

	s.touched[path] = true
	return nil
}

// ClientPatch is a partial update for one client entry. Nil fields are left
// unchanged.
type ClientPatch struct {
	Name          *string               `json:"name,omitempty"`
	Email         *string               `json:"email,omitempty"`
	Phone         *string               `json:"phone,omitempty"`
	Address       *string               `json:"address,omitempty"`
	MaritalStatus *models.MaritalStatus `json:"maritalStatus,omitempty"`
	Type          *models.ClientType    `json:"type,omitempty"`
}

// AddClient appends a new client seeded with a fresh id and a type implied
// by the current agent role, and returns it.
func (s *Store) AddClient() models.Client {
	c := models.Client{
		ID:   uuid.NewString(),
		Type: s.record.AgentData.Role.ClientTypeFor(),
	}
	s.record.Clients = append(s.record.Clients, c)
	s.touched["clients"] = true
	return c
}

// UpdateClient applies a partial update to the client at index.
func (s *Store) UpdateClient(index int, patch ClientPatch) error {
	if index < 0 || index >= len(s.record.Clients) {
		return fmt.Errorf("client index %d out of range", index)
	}
	c := &s.record.Clients[index]
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Address != nil {
		c.Address = *patch.Address
	}
	if patch.MaritalStatus != nil {
		c.MaritalStatus = *patch.MaritalStatus
	}
	if patch.Type != nil {
		if s.record.AgentData.Role != models.RoleDualAgent {
			// type is locked to the representation side outside dual agency
			c.Type = s.record.AgentData.Role.ClientTypeFor()
		} else {
			c.Type = *patch.Type
		}
	}
	s.touched[fmt.Sprintf("clients.%d", index)] = true
	return nil
}

// RemoveClient removes the client at index unless doing so would drop the
// list below the minimum the current role implies. The refusal is reported
// as a plain error value carrying the validation message.
func (s *Store) RemoveClient(index int) error {
	clients := s.record.Clients
	if index < 0 || index >= len(clients) {
		return fmt.Errorf("client index %d out of range", index)
	}
	if len(clients) == 1 {
		return errors.New("at least one client is required")
	}
	if s.record.AgentData.Role == models.RoleDualAgent {
		removed := clients[index].Type
		if removed == models.ClientTypeBuyer || removed == models.ClientTypeSeller {
			remaining := 0
			for i, c := range clients {
				if i != index && c.Type == removed {
					remaining++
				}
			}
			if remaining == 0 {
				return fmt.Errorf("a dual agency transaction needs at least one %s client", strings.ToLower(string(removed)))
			}
		}
	}
	s.record.Clients = append(clients[:index], clients[index+1:]...)
	s.touched["clients"] = true
	return nil
}

func (s *Store) updateClientField(path, value string) error {
	parts := strings.SplitN(path, ".", 3)
	if len(parts) != 3 {
		return fmt.Errorf("%w: %s", errUnknownField, path)
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil || index < 0 || index >= len(s.record.Clients) {
		return fmt.Errorf("client index %q out of range", parts[1])
	}
	c := &s.record.Clients[index]
	switch parts[2] {
	case "name":
		c.Name = value
	case "email":
		c.Email = value
	case "phone":
		c.Phone = value
	case "address":
		c.Address = value
	case "maritalStatus":
		c.MaritalStatus = models.MaritalStatus(value)
	case "type":
		if s.record.AgentData.Role != models.RoleDualAgent {
			c.Type = s.record.AgentData.Role.ClientTypeFor()
		} else {
			c.Type = models.ClientType(value)
		}
	default:
		return fmt.Errorf("%w: %s", errUnknownField, path)
	}
	s.touched[path] = true
	return nil
}

// applyRoleToClients force-sets every client's type to the side implied by
// the new role. Dual agency keeps whatever the agent chose.
func (s *Store) applyRoleToClients(role models.AgentRole) {
	if role == models.RoleDualAgent {
		return
	}
	implied := role.ClientTypeFor()
	for i := range s.record.Clients {
		s.record.Clients[i].Type = implied
	}
}

type editedPercent int

const (
	editedTotal editedPercent = iota
	editedListing
	editedBuyers
)

// recalcCommission derives exactly one sibling of the percentage field just
// edited: total = listing + buyer's. The edited field itself is never
// recomputed; derived values are rounded to 2 decimals and clamped to
// [0,100], so recomputation can never go negative.
func (s *Store) recalcCommission(edited editedPercent) {
	c := &s.record.CommissionData
	total, okT := parsePercent(c.TotalCommissionPercentage)
	listing, okL := parsePercent(c.ListingAgentPercentage)
	buyers, okB := parsePercent(c.BuyersAgentPercentage)

	switch edited {
	case editedTotal:
		if !okT {
			return
		}
		if okL {
			c.BuyersAgentPercentage = formatPercent(total.Sub(listing))
		} else if okB {
			c.ListingAgentPercentage = formatPercent(total.Sub(buyers))
		}
	case editedListing:
		if !okL {
			return
		}
		if okT {
			c.BuyersAgentPercentage = formatPercent(total.Sub(listing))
		} else if okB {
			c.TotalCommissionPercentage = formatPercent(listing.Add(buyers))
		}
	case editedBuyers:
		if !okB {
			return
		}
		if okT {
			c.ListingAgentPercentage = formatPercent(total.Sub(buyers))
		} else if okL {
			c.TotalCommissionPercentage = formatPercent(listing.Add(buyers))
		}
	}
}

var (
	percentMin = decimal.Zero
	percentMax = decimal.NewFromInt(100)
)

func parsePercent(s string) (decimal.Decimal, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// formatPercent rounds to 2 decimals and clamps into [0,100].
func formatPercent(d decimal.Decimal) string {
	if d.LessThan(percentMin) {
		d = percentMin
	}
	if d.GreaterThan(percentMax) {
		d = percentMax
	}
	return d.Round(2).String()
}

// clampPercentInput clamps a typed percentage into [0,100] when it parses;
// unparseable input is stored as-is for the validator to flag.
func clampPercentInput(value string) string {
	d, ok := parsePercent(value)
	if !ok {
		return value
	}
	return formatPercent(d)
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return b
}
