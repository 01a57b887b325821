package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/agentportal/backend/src/models"
)

func listingRecord() *models.TransactionRecord {
	rec := models.NewTransactionRecord()
	rec.AgentData.Role = models.RoleListingAgent
	rec.AgentData.Name = "Jane Agent"
	rec.PropertyData.MLSNumber = "PM-123456"
	rec.PropertyData.Address = "123 Main St, Media, PA"
	rec.PropertyData.SalePrice = "425000"
	rec.PropertyData.ClosingDate = time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	rec.PropertyData.County = "Delaware"
	rec.PropertyData.PropertyType = "RESIDENTIAL"
	rec.PropertyData.AccessType = "ELECTRONIC_LOCKBOX"
	rec.Clients = []models.Client{{ID: "c1", Name: "Sam Seller", Type: models.ClientTypeSeller}}
	rec.CommissionData.TotalCommissionPercentage = "6"
	rec.CommissionData.ListingAgentPercentage = "3"
	rec.CommissionData.BuyersAgentPercentage = "3"
	rec.Documents.DocumentsConfirmed = true
	rec.SignatureData.Signature = "Jane Agent"
	rec.SignatureData.TermsAccepted = true
	rec.SignatureData.InfoConfirmed = true
	return rec
}

func TestValidateStep_MissingRequiredFieldBlocks(t *testing.T) {
	rec := listingRecord()
	rec.PropertyData.MLSNumber = ""

	res := ValidateStep(2, rec)
	assert.False(t, res.CanProceed)
	assert.Equal(t, RequiredMessage, res.Errors["propertyData.mlsNumber"])
	assert.Contains(t, res.MissingFields, "propertyData.mlsNumber")
}

func TestValidateStep_RoleChangesRequirements(t *testing.T) {
	rec := listingRecord()
	rec.PropertyData.MLSNumber = ""
	rec.PropertyData.AccessType = ""

	// Listing side misses both fields.
	res := ValidateStep(2, rec)
	assert.False(t, res.CanProceed)

	// A buyer's agent does not need either.
	rec.AgentData.Role = models.RoleBuyersAgent
	res = ValidateStep(2, rec)
	assert.True(t, res.CanProceed)
}

func TestValidateStep_ListingAgentCoreFieldsSuffice(t *testing.T) {
	rec := models.NewTransactionRecord()
	rec.AgentData.Role = models.RoleListingAgent
	rec.PropertyData.MLSNumber = "PM-123456"
	rec.PropertyData.Address = "123 Main St, Media, PA"
	rec.PropertyData.SalePrice = "425000"
	rec.PropertyData.ClosingDate = time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	rec.PropertyData.County = "Delaware"
	rec.PropertyData.PropertyType = "RESIDENTIAL"

	res := ValidateStep(2, rec)
	assert.True(t, res.CanProceed)
	assert.Empty(t, res.Errors)
	// The missing access type only earns a nudge.
	assert.NotEmpty(t, res.Warnings["propertyData.accessType"])
}

func TestValidateStep_DualAgentSingleBuyerProceedsWithWarning(t *testing.T) {
	rec := models.NewTransactionRecord()
	rec.AgentData.Role = models.RoleDualAgent
	rec.Clients = []models.Client{{ID: "c1", Type: models.ClientTypeBuyer}}

	res := ValidateStep(3, rec)
	assert.True(t, res.CanProceed)
	assert.Empty(t, res.Errors)
	assert.Contains(t, res.Warnings["clients"],
		"Dual agency transactions usually need both a buyer and a seller")
	assert.Contains(t, res.Warnings["clients.0.name"], "Client name is missing")
}

func TestValidateStep_WarningsDoNotBlock(t *testing.T) {
	rec := listingRecord()
	rec.AgentData.Email = ""
	rec.AgentData.Phone = ""

	res := ValidateStep(1, rec)
	assert.True(t, res.CanProceed)
	assert.NotEmpty(t, res.Warnings["agentData.email"])
	assert.NotEmpty(t, res.Warnings["agentData.phone"])
}

func TestValidateStep_SellersAssistSanityWarning(t *testing.T) {
	rec := listingRecord()
	rec.CommissionData.HasSellersAssist = true
	rec.CommissionData.SellersAssist = "1500000"

	res := ValidateStep(4, rec)
	assert.True(t, res.CanProceed)
	assert.NotEmpty(t, res.Warnings["commissionData.sellersAssist"])
}

func TestValidateStep_Clients(t *testing.T) {
	t.Run("empty list blocks", func(t *testing.T) {
		rec := listingRecord()
		rec.Clients = []models.Client{}
		res := ValidateStep(3, rec)
		assert.False(t, res.CanProceed)
		assert.Equal(t, "At least one client is required", res.Errors["clients"])
	})

	t.Run("nameless client warns but does not block", func(t *testing.T) {
		rec := listingRecord()
		rec.Clients[0].Name = ""
		res := ValidateStep(3, rec)
		assert.True(t, res.CanProceed)
		assert.Contains(t, res.Warnings["clients.0.name"], "Client name is missing")
	})

	t.Run("listing agent needs a seller", func(t *testing.T) {
		rec := listingRecord()
		rec.Clients[0].Type = models.ClientTypeBuyer
		res := ValidateStep(3, rec)
		assert.False(t, res.CanProceed)
		assert.Equal(t, "At least one seller client is required", res.Errors["clients"])
	})

	t.Run("buyers agent needs a buyer", func(t *testing.T) {
		rec := listingRecord()
		rec.AgentData.Role = models.RoleBuyersAgent
		rec.Clients[0].Type = models.ClientTypeSeller
		res := ValidateStep(3, rec)
		assert.False(t, res.CanProceed)
		assert.Equal(t, "At least one buyer client is required", res.Errors["clients"])
	})

	t.Run("dual agent one side is only a warning", func(t *testing.T) {
		rec := listingRecord()
		rec.AgentData.Role = models.RoleDualAgent
		res := ValidateStep(3, rec)
		assert.True(t, res.CanProceed)
		assert.Contains(t, res.Warnings["clients"],
			"Dual agency transactions usually need both a buyer and a seller")
	})

	t.Run("dual agent untyped client blocks", func(t *testing.T) {
		rec := listingRecord()
		rec.AgentData.Role = models.RoleDualAgent
		rec.Clients = append(rec.Clients, models.Client{ID: "c2", Name: "Pat Buyer"})
		res := ValidateStep(3, rec)
		assert.False(t, res.CanProceed)
		assert.Equal(t, RequiredMessage, res.Errors["clients.1.type"])
	})

	t.Run("invalid client contact is a warning", func(t *testing.T) {
		rec := listingRecord()
		rec.Clients[0].Email = "not-an-email"
		rec.Clients[0].Phone = "123"
		res := ValidateStep(3, rec)
		assert.True(t, res.CanProceed)
		assert.NotEmpty(t, res.Warnings["clients.0.email"])
		assert.NotEmpty(t, res.Warnings["clients.0.phone"])
	})
}

func TestValidateStep_Documents(t *testing.T) {
	rec := listingRecord()
	rec.Documents.DocumentsConfirmed = false

	res := ValidateStep(6, rec)
	assert.False(t, res.CanProceed)
	assert.Equal(t, "Please confirm the required documents", res.Errors["documents.documentsConfirmed"])
}

func TestValidateStep_Signature(t *testing.T) {
	rec := listingRecord()
	rec.SignatureData.Signature = "   "
	rec.SignatureData.TermsAccepted = false
	rec.SignatureData.InfoConfirmed = false

	res := ValidateStep(9, rec)
	assert.False(t, res.CanProceed)
	assert.Equal(t, RequiredMessage, res.Errors["signatureData.signature"])
	assert.NotEmpty(t, res.Errors["signatureData.termsAccepted"])
	assert.NotEmpty(t, res.Errors["signatureData.infoConfirmed"])
}

func TestValidateAll(t *testing.T) {
	rec := listingRecord()
	failed := ValidateAll(rec)
	assert.Empty(t, failed)

	rec.PropertyData.Address = ""
	rec.SignatureData.TermsAccepted = false
	failed = ValidateAll(rec)
	require.Len(t, failed, 2)
	assert.Contains(t, failed, 2)
	assert.Contains(t, failed, 9)
}

func TestFieldValue(t *testing.T) {
	rec := listingRecord()

	v, ok := FieldValue(rec, "propertyData.mlsNumber")
	require.True(t, ok)
	assert.Equal(t, "PM-123456", v)

	v, ok = FieldValue(rec, "agentData.role")
	require.True(t, ok)
	assert.Equal(t, "LISTING_AGENT", v)

	_, ok = FieldValue(rec, "propertyData.builtBefore1978")
	assert.False(t, ok, "boolean leaves are not string-addressable")

	_, ok = FieldValue(rec, "no.such.field")
	assert.False(t, ok)
}
