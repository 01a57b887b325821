package services

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func sampleRecord() *models.TransactionRecord {
	rec := models.NewTransactionRecord()
	rec.AgentData.Role = models.RoleListingAgent
	rec.AgentData.Name = "Jane Agent"
	rec.AgentData.Email = "jane@example.com"
	rec.PropertyData.MLSNumber = "PM-123456"
	rec.PropertyData.Address = "123 Main St, Media, PA"
	rec.PropertyData.SalePrice = "425000"
	rec.Clients = []models.Client{{
		ID: "c1", Name: "Sam Seller", Type: models.ClientTypeSeller,
		MaritalStatus: models.MaritalMarried,
	}}
	rec.CommissionData.TotalCommissionPercentage = "6"
	rec.CommissionData.ListingAgentPercentage = "3"
	rec.CommissionData.BuyersAgentPercentage = "3"
	return rec
}

func sectionByName(t *testing.T, sections []SectionReview, name string) SectionReview {
	t.Helper()
	for _, s := range sections {
		if s.Section == name {
			return s
		}
	}
	t.Fatalf("section %q not found", name)
	return SectionReview{}
}

func fieldByLabel(t *testing.T, section SectionReview, label string) ReviewField {
	t.Helper()
	for _, f := range section.Fields {
		if f.Label == label {
			return f
		}
	}
	t.Fatalf("field %q not found in section %q", label, section.Section)
	return ReviewField{}
}

func TestBuildReview(t *testing.T) {
	svc := NewPDFExportService()
	sections := svc.BuildReview(sampleRecord())
	require.Len(t, sections, 9)

	agent := sectionByName(t, sections, "Agent Information")
	assert.Equal(t, "Listing Agent", fieldByLabel(t, agent, "Role").Value)
	assert.Equal(t, "Jane Agent", fieldByLabel(t, agent, "Name").Value)

	property := sectionByName(t, sections, "Property Information")
	mls := fieldByLabel(t, property, "MLS Number")
	assert.Equal(t, "PM-123456", mls.Value)
	assert.Equal(t, 2, mls.Step)

	// Empty values show the placeholder, booleans show Yes/No.
	assert.Equal(t, NotSpecified, fieldByLabel(t, property, "County").Value)
	assert.Equal(t, "No", fieldByLabel(t, property, "Built Before 1978").Value)

	commission := sectionByName(t, sections, "Commission")
	assert.Equal(t, "6%", fieldByLabel(t, commission, "Total Commission").Value)
	assert.Equal(t, "No", fieldByLabel(t, commission, "Referral").Value)

	clients := sectionByName(t, sections, "Clients")
	assert.Equal(t, "Sam Seller", fieldByLabel(t, clients, "Client 1 Name").Value)
	assert.Equal(t, "Married", fieldByLabel(t, clients, "Client 1 Marital Status").Value)
	assert.Equal(t, 3, fieldByLabel(t, clients, "Client 1 Name").Step)
}

func TestBuildReview_ReferralFields(t *testing.T) {
	svc := NewPDFExportService()
	rec := sampleRecord()
	rec.CommissionData.IsReferral = true
	rec.CommissionData.ReferralParty = "Remote Realty"
	rec.CommissionData.BrokerEIN = "12-3456789"

	commission := sectionByName(t, svc.BuildReview(rec), "Commission")
	assert.Equal(t, "Remote Realty", fieldByLabel(t, commission, "Referral Party").Value)
	assert.Equal(t, "12-3456789", fieldByLabel(t, commission, "Referral Broker EIN").Value)
	assert.Equal(t, NotSpecified, fieldByLabel(t, commission, "Referral Fee").Value)
}

func TestBuildReview_GatedDetailsHidden(t *testing.T) {
	svc := NewPDFExportService()
	rec := sampleRecord()

	details := sectionByName(t, svc.BuildReview(rec), "Property Details")
	for _, f := range details.Fields {
		assert.NotEqual(t, "HOA Name", f.Label, "gated field should not appear while its toggle is off")
	}

	rec.PropertyDetails.ResaleCertRequired = true
	rec.PropertyDetails.HOAName = "Maple Grove HOA"
	details = sectionByName(t, svc.BuildReview(rec), "Property Details")
	assert.Equal(t, "Maple Grove HOA", fieldByLabel(t, details, "HOA Name").Value)
}

func TestBuildReview_EmptyClientList(t *testing.T) {
	svc := NewPDFExportService()
	rec := sampleRecord()
	rec.Clients = []models.Client{}

	clients := sectionByName(t, svc.BuildReview(rec), "Clients")
	require.Len(t, clients.Fields, 1)
	assert.Equal(t, NotSpecified, clients.Fields[0].Value)
}

func TestRenderPDF(t *testing.T) {
	svc := NewPDFExportService()

	pdfBytes, err := svc.RenderPDF(sampleRecord())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")), "output should be a PDF document")
	assert.Greater(t, len(pdfBytes), 1000)

	// An empty record still renders.
	pdfBytes, err = svc.RenderPDF(models.NewTransactionRecord())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))
}
