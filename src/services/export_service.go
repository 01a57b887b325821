package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/username/agentportal/backend/src/form"
	"github.com/username/agentportal/backend/src/models"
	"github.com/username/agentportal/backend/src/validation"
)

// NotSpecified is shown for any field the agent left blank.
const NotSpecified = "Not specified"

// ReviewField is one labeled value on the review screen. Field carries the
// dot path and Step the wizard step so the UI can render a fix link.
type ReviewField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Field string `json:"field,omitempty"`
	Step  int    `json:"step,omitempty"`
}

// SectionReview groups the review fields of one record section.
type SectionReview struct {
	Section string        `json:"section"`
	Fields  []ReviewField `json:"fields"`
}

// PDFExportService renders the review payload and the printable summary.
type PDFExportService struct{}

func NewPDFExportService() *PDFExportService {
	return &PDFExportService{}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotSpecified
	}
	return v
}

func reviewField(label, value, field string) ReviewField {
	rf := ReviewField{Label: label, Value: orPlaceholder(value), Field: field}
	if field != "" {
		rf.Step = form.StepForField(field)
	}
	return rf
}

func percentValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotSpecified
	}
	return v + "%"
}

// BuildReview flattens the record into ordered sections of label/value pairs
// for the review step. Empty values become the placeholder; booleans become
// Yes/No.
func (s *PDFExportService) BuildReview(rec *models.TransactionRecord) []SectionReview {
	agent := SectionReview{
		Section: "Agent Information",
		Fields: []ReviewField{
			reviewField("Role", roleLabel(rec.AgentData.Role), "agentData.role"),
			reviewField("Name", rec.AgentData.Name, "agentData.name"),
			reviewField("Email", rec.AgentData.Email, "agentData.email"),
			reviewField("Phone", rec.AgentData.Phone, "agentData.phone"),
		},
	}

	property := SectionReview{
		Section: "Property Information",
		Fields: []ReviewField{
			reviewField("MLS Number", rec.PropertyData.MLSNumber, "propertyData.mlsNumber"),
			reviewField("Address", rec.PropertyData.Address, "propertyData.address"),
			reviewField("Sale Price", rec.PropertyData.SalePrice, "propertyData.salePrice"),
			reviewField("Closing Date", rec.PropertyData.ClosingDate, "propertyData.closingDate"),
			reviewField("County", rec.PropertyData.County, "propertyData.county"),
			reviewField("Property Type", rec.PropertyData.PropertyType, "propertyData.propertyType"),
			reviewField("Status", rec.PropertyData.Status, "propertyData.status"),
			reviewField("Access Type", rec.PropertyData.AccessType, "propertyData.accessType"),
			reviewField("Lockbox Code", rec.PropertyData.LockboxCode, "propertyData.lockboxCode"),
			reviewField("Built Before 1978", yesNo(rec.PropertyData.BuiltBefore1978), "propertyData.builtBefore1978"),
			reviewField("Winterized", yesNo(rec.PropertyData.Winterized), "propertyData.winterized"),
			reviewField("Update MLS", yesNo(rec.PropertyData.UpdateMLS), "propertyData.updateMls"),
		},
	}

	clients := SectionReview{Section: "Clients"}
	if len(rec.Clients) == 0 {
		clients.Fields = append(clients.Fields, ReviewField{Label: "Clients", Value: NotSpecified, Step: 3})
	}
	for i, c := range rec.Clients {
		prefix := fmt.Sprintf("clients.%d.", i)
		header := fmt.Sprintf("Client %d", i+1)
		clients.Fields = append(clients.Fields,
			reviewField(header+" Name", c.Name, prefix+"name"),
			reviewField(header+" Type", clientTypeLabel(c.Type), prefix+"type"),
			reviewField(header+" Email", c.Email, prefix+"email"),
			reviewField(header+" Phone", c.Phone, prefix+"phone"),
			reviewField(header+" Address", c.Address, prefix+"address"),
			reviewField(header+" Marital Status", maritalLabel(c.MaritalStatus), prefix+"maritalStatus"),
		)
	}

	commission := SectionReview{
		Section: "Commission",
		Fields: []ReviewField{
			{Label: "Total Commission", Value: percentValue(rec.CommissionData.TotalCommissionPercentage), Field: "commissionData.totalCommissionPercentage", Step: 4},
			{Label: "Listing Agent Commission", Value: percentValue(rec.CommissionData.ListingAgentPercentage), Field: "commissionData.listingAgentPercentage", Step: 4},
			{Label: "Buyer's Agent Commission", Value: percentValue(rec.CommissionData.BuyersAgentPercentage), Field: "commissionData.buyersAgentPercentage", Step: 4},
			reviewField("Broker Fee", rec.CommissionData.BrokerFee, "commissionData.brokerFee"),
			reviewField("Seller Paid Amount", rec.CommissionData.SellerPaidAmount, "commissionData.sellerPaidAmount"),
			reviewField("Buyer Paid Amount", rec.CommissionData.BuyerPaidAmount, "commissionData.buyerPaidAmount"),
			reviewField("Seller's Assist", sellersAssist(rec), "commissionData.hasSellersAssist"),
			reviewField("Coordinator Fee Paid By", rec.CommissionData.CoordinatorFeePaidBy, "commissionData.coordinatorFeePaidBy"),
		},
	}
	if rec.CommissionData.IsReferral {
		commission.Fields = append(commission.Fields,
			reviewField("Referral Party", rec.CommissionData.ReferralParty, "commissionData.referralParty"),
			reviewField("Referral Broker EIN", rec.CommissionData.BrokerEIN, "commissionData.brokerEin"),
			reviewField("Referral Fee", rec.CommissionData.ReferralFee, "commissionData.referralFee"),
		)
	} else {
		commission.Fields = append(commission.Fields,
			reviewField("Referral", "No", "commissionData.isReferral"))
	}

	details := SectionReview{
		Section: "Property Details",
		Fields: []ReviewField{
			reviewField("Resale Certificate Required", yesNo(rec.PropertyDetails.ResaleCertRequired), "propertyDetails.resaleCertRequired"),
		},
	}
	if rec.PropertyDetails.ResaleCertRequired {
		details.Fields = append(details.Fields, reviewField("HOA Name", rec.PropertyDetails.HOAName, "propertyDetails.hoaName"))
	}
	details.Fields = append(details.Fields, reviewField("CO Required", yesNo(rec.PropertyDetails.CORequired), "propertyDetails.coRequired"))
	if rec.PropertyDetails.CORequired {
		details.Fields = append(details.Fields, reviewField("Municipality", rec.PropertyDetails.Municipality, "propertyDetails.municipality"))
	}
	details.Fields = append(details.Fields, reviewField("First Right of Refusal", yesNo(rec.PropertyDetails.FirstRightOfRefusal), "propertyDetails.firstRightOfRefusal"))
	if rec.PropertyDetails.FirstRightOfRefusal {
		details.Fields = append(details.Fields, reviewField("First Right Holder", rec.PropertyDetails.FirstRightName, "propertyDetails.firstRightName"))
	}
	details.Fields = append(details.Fields, reviewField("Attorney Representation", yesNo(rec.PropertyDetails.AttorneyRepresentation), "propertyDetails.attorneyRepresentation"))
	if rec.PropertyDetails.AttorneyRepresentation {
		details.Fields = append(details.Fields, reviewField("Attorney Name", rec.PropertyDetails.AttorneyName, "propertyDetails.attorneyName"))
	}
	details.Fields = append(details.Fields, reviewField("Home Warranty", yesNo(rec.PropertyDetails.HomeWarranty), "propertyDetails.homeWarranty"))
	if rec.PropertyDetails.HomeWarranty {
		details.Fields = append(details.Fields,
			reviewField("Warranty Company", rec.PropertyDetails.WarrantyCompany, "propertyDetails.warrantyCompany"),
			reviewField("Warranty Cost", rec.PropertyDetails.WarrantyCost, "propertyDetails.warrantyCost"),
			reviewField("Warranty Paid By", rec.PropertyDetails.WarrantyPaidBy, "propertyDetails.warrantyPaidBy"),
		)
	}

	title := SectionReview{
		Section: "Title Company",
		Fields: []ReviewField{
			reviewField("Title Company", rec.TitleData.TitleCompany, "titleData.titleCompany"),
			reviewField("Contact Name", rec.TitleData.ContactName, "titleData.contactName"),
			reviewField("Contact Phone", rec.TitleData.ContactPhone, "titleData.contactPhone"),
		},
	}

	documents := SectionReview{
		Section: "Documents",
		Fields: []ReviewField{
			reviewField("Required Documents Confirmed", yesNo(rec.Documents.DocumentsConfirmed), "documents.documentsConfirmed"),
		},
	}

	additional := SectionReview{
		Section: "Additional Information",
		Fields: []ReviewField{
			reviewField("Special Instructions", validation.SanitizeFreeText(rec.AdditionalInfo.SpecialInstructions), "additionalInfo.specialInstructions"),
			reviewField("Urgent Issues", validation.SanitizeFreeText(rec.AdditionalInfo.UrgentIssues), "additionalInfo.urgentIssues"),
			reviewField("Notes", validation.SanitizeFreeText(rec.AdditionalInfo.Notes), "additionalInfo.notes"),
		},
	}

	signature := SectionReview{
		Section: "Signature",
		Fields: []ReviewField{
			reviewField("Signature", rec.SignatureData.Signature, "signatureData.signature"),
			reviewField("Date Submitted", rec.SignatureData.DateSubmitted, ""),
			reviewField("Terms Accepted", yesNo(rec.SignatureData.TermsAccepted), "signatureData.termsAccepted"),
			reviewField("Information Confirmed", yesNo(rec.SignatureData.InfoConfirmed), "signatureData.infoConfirmed"),
		},
	}

	return []SectionReview{agent, property, clients, commission, details, title, documents, additional, signature}
}

func sellersAssist(rec *models.TransactionRecord) string {
	if !rec.CommissionData.HasSellersAssist {
		return "No"
	}
	if strings.TrimSpace(rec.CommissionData.SellersAssist) == "" {
		return NotSpecified
	}
	return rec.CommissionData.SellersAssist
}

func roleLabel(r models.AgentRole) string {
	switch r {
	case models.RoleListingAgent:
		return "Listing Agent"
	case models.RoleBuyersAgent:
		return "Buyer's Agent"
	case models.RoleDualAgent:
		return "Dual Agent"
	}
	return ""
}

func clientTypeLabel(t models.ClientType) string {
	switch t {
	case models.ClientTypeBuyer:
		return "Buyer"
	case models.ClientTypeSeller:
		return "Seller"
	}
	return ""
}

func maritalLabel(m models.MaritalStatus) string {
	switch m {
	case models.MaritalSingle:
		return "Single"
	case models.MaritalMarried:
		return "Married"
	case models.MaritalDivorced:
		return "Divorced"
	case models.MaritalWidowed:
		return "Widowed"
	}
	return ""
}

// RenderPDF produces the printable transaction summary: one titled page flow
// with a header block per section and label/value rows, matching the review
// screen content.
func (s *PDFExportService) RenderPDF(rec *models.TransactionRecord) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Transaction Summary", "", 1, "C", false, 0, "")
	if rec.PropertyData.Address != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, rec.PropertyData.Address, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range s.BuildReview(rec) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 8, section.Section, "", 1, "L", true, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Helvetica", "", 10)
		for _, f := range section.Fields {
			pdf.SetTextColor(90, 90, 90)
			pdf.CellFormat(65, 6, f.Label, "", 0, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, 6, f.Value, "", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering transaction summary: %w", err)
	}
	return buf.Bytes(), nil
}
