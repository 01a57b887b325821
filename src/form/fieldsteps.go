// backend/src/form/fieldsteps.go
package form

import "strings"

// fieldStepTable maps field identifiers to the wizard step that owns them.
// Review-screen "fix this field" links resolve through it.
var fieldStepTable = map[string]int{
	"agentData.role":  1,
	"agentData.name":  1,
	"agentData.email": 1,
	"agentData.phone": 1,

	"propertyData.mlsNumber":       2,
	"propertyData.address":         2,
	"propertyData.salePrice":       2,
	"propertyData.closingDate":     2,
	"propertyData.county":          2,
	"propertyData.propertyType":    2,
	"propertyData.status":          2,
	"propertyData.accessType":      2,
	"propertyData.lockboxCode":     2,
	"propertyData.builtBefore1978": 2,
	"propertyData.winterized":      2,
	"propertyData.updateMls":       2,

	"clients": 3,

	"commissionData.totalCommissionPercentage": 4,
	"commissionData.listingAgentPercentage":    4,
	"commissionData.buyersAgentPercentage":     4,
	"commissionData.brokerFee":                 4,
	"commissionData.sellerPaidAmount":          4,
	"commissionData.buyerPaidAmount":           4,
	"commissionData.hasSellersAssist":          4,
	"commissionData.sellersAssist":             4,
	"commissionData.isReferral":                4,
	"commissionData.referralParty":             4,
	"commissionData.brokerEin":                 4,
	"commissionData.referralFee":               4,
	"commissionData.coordinatorFeePaidBy":      4,

	"propertyDetails.resaleCertRequired":     5,
	"propertyDetails.hoaName":                5,
	"propertyDetails.coRequired":             5,
	"propertyDetails.municipality":           5,
	"propertyDetails.firstRightOfRefusal":    5,
	"propertyDetails.firstRightName":         5,
	"propertyDetails.attorneyRepresentation": 5,
	"propertyDetails.attorneyName":           5,
	"propertyDetails.homeWarranty":           5,
	"propertyDetails.warrantyCompany":        5,
	"propertyDetails.warrantyCost":           5,
	"propertyDetails.warrantyPaidBy":         5,

	"titleData.titleCompany":       6,
	"titleData.contactName":        6,
	"titleData.contactPhone":       6,
	"documents.documentsConfirmed": 6,

	"additionalInfo.specialInstructions": 7,
	"additionalInfo.urgentIssues":        7,
	"additionalInfo.notes":               7,

	"signatureData.signature":     9,
	"signatureData.agentName":     9,
	"signatureData.termsAccepted": 9,
	"signatureData.infoConfirmed": 9,
}

// StepForField resolves a field identifier to its wizard step. Identifiers
// missing from the table fall back to substring heuristics so that
// client-side deep links keep working for client-row fields and legacy
// identifiers.
func StepForField(field string) int {
	if step, ok := fieldStepTable[field]; ok {
		return step
	}
	f := strings.ToLower(field)
	switch {
	case strings.Contains(f, "client"):
		return 3
	case strings.Contains(f, "commission"), strings.Contains(f, "referral"),
		strings.Contains(f, "assist"), strings.Contains(f, "broker"):
		return 4
	case strings.Contains(f, "warranty"), strings.Contains(f, "hoa"),
		strings.Contains(f, "municipality"), strings.Contains(f, "attorney"):
		return 5
	case strings.Contains(f, "title"), strings.Contains(f, "document"):
		return 6
	case strings.Contains(f, "signature"), strings.Contains(f, "terms"):
		return 9
	case strings.Contains(f, "mls"), strings.Contains(f, "address"),
		strings.Contains(f, "property"):
		return 2
	default:
		return 1
	}
}
