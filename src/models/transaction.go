package models

import "encoding/json"

// AgentRole is the representation side of the submitting agent. It drives
// most of the conditional requirement logic in validation.
type AgentRole string

const (
	RoleListingAgent AgentRole = "LISTING_AGENT"
	RoleBuyersAgent  AgentRole = "BUYERS_AGENT"
	RoleDualAgent    AgentRole = "DUAL_AGENT"
)

// ClientTypeFor returns the client type implied by the role. For DUAL_AGENT
// there is no single implied type and BUYER is used as the seed default.
func (r AgentRole) ClientTypeFor() ClientType {
	if r == RoleListingAgent {
		return ClientTypeSeller
	}
	return ClientTypeBuyer
}

type ClientType string

const (
	ClientTypeBuyer  ClientType = "BUYER"
	ClientTypeSeller ClientType = "SELLER"
)

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "SINGLE"
	MaritalMarried  MaritalStatus = "MARRIED"
	MaritalDivorced MaritalStatus = "DIVORCED"
	MaritalWidowed  MaritalStatus = "WIDOWED"
)

type AgentData struct {
	Role  AgentRole `json:"role"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

// PropertyData describes the subject property. MLSNumber format is an
// optional "PM-" prefix followed by exactly six digits.
type PropertyData struct {
	MLSNumber       string `json:"mlsNumber"`
	Address         string `json:"address"`
	SalePrice       string `json:"salePrice"`
	ClosingDate     string `json:"closingDate"` // YYYY-MM-DD
	County          string `json:"county"`
	PropertyType    string `json:"propertyType"`
	Status          string `json:"status"`
	AccessType      string `json:"accessType"`
	LockboxCode     string `json:"lockboxCode"`
	BuiltBefore1978 bool   `json:"builtBefore1978"`
	Winterized      bool   `json:"winterized"`
	UpdateMLS       bool   `json:"updateMls"`
}

type Client struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	MaritalStatus MaritalStatus `json:"maritalStatus"`
	Type          ClientType    `json:"type"`
}

// CommissionData keeps all amounts as the raw strings the agent typed.
// The three percentage fields are mutually derived; see form.Store.
type CommissionData struct {
	TotalCommissionPercentage string `json:"totalCommissionPercentage"`
	ListingAgentPercentage    string `json:"listingAgentPercentage"`
	BuyersAgentPercentage     string `json:"buyersAgentPercentage"`
	BrokerFee                 string `json:"brokerFee"`
	SellerPaidAmount          string `json:"sellerPaidAmount"`
	BuyerPaidAmount           string `json:"buyerPaidAmount"`
	HasSellersAssist          bool   `json:"hasSellersAssist"`
	SellersAssist             string `json:"sellersAssist"`
	IsReferral                bool   `json:"isReferral"`
	ReferralParty             string `json:"referralParty"`
	BrokerEIN                 string `json:"brokerEin"`
	ReferralFee               string `json:"referralFee"`
	CoordinatorFeePaidBy      string `json:"coordinatorFeePaidBy"` // "CLIENT" or "AGENT"
}

// PropertyDetailsData is a set of boolean toggles, each gating a sibling
// field that is required only while its toggle is on.
type PropertyDetailsData struct {
	ResaleCertRequired     bool   `json:"resaleCertRequired"`
	HOAName                string `json:"hoaName"`
	CORequired             bool   `json:"coRequired"`
	Municipality           string `json:"municipality"`
	FirstRightOfRefusal    bool   `json:"firstRightOfRefusal"`
	FirstRightName         string `json:"firstRightName"`
	AttorneyRepresentation bool   `json:"attorneyRepresentation"`
	AttorneyName           string `json:"attorneyName"`
	HomeWarranty           bool   `json:"homeWarranty"`
	WarrantyCompany        string `json:"warrantyCompany"`
	WarrantyCost           string `json:"warrantyCost"`
	WarrantyPaidBy         string `json:"warrantyPaidBy"`
}

type TitleCompanyData struct {
	TitleCompany string `json:"titleCompany"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
}

type DocumentsData struct {
	DocumentsConfirmed bool `json:"documentsConfirmed"`
}

type AdditionalInfoData struct {
	SpecialInstructions string `json:"specialInstructions"`
	UrgentIssues        string `json:"urgentIssues"`
	Notes               string `json:"notes"`
}

type SignatureData struct {
	Signature     string `json:"signature"` // typed full name
	AgentName     string `json:"agentName"`
	DateSubmitted string `json:"dateSubmitted"`
	TermsAccepted bool   `json:"termsAccepted"`
	InfoConfirmed bool   `json:"infoConfirmed"`
}

// TransactionRecord aggregates the eight sections collected by the intake
// wizard. Section keys double as the prefix of dot-separated field paths,
// e.g. "propertyData.mlsNumber".
type TransactionRecord struct {
	AgentData       AgentData           `json:"agentData"`
	PropertyData    PropertyData        `json:"propertyData"`
	Clients         []Client            `json:"clients"`
	CommissionData  CommissionData      `json:"commissionData"`
	PropertyDetails PropertyDetailsData `json:"propertyDetails"`
	TitleData       TitleCompanyData    `json:"titleData"`
	Documents       DocumentsData       `json:"documents"`
	AdditionalInfo  AdditionalInfoData  `json:"additionalInfo"`
	SignatureData   SignatureData       `json:"signatureData"`
}

// NewTransactionRecord returns an empty record ready for the wizard.
func NewTransactionRecord() *TransactionRecord {
	return &TransactionRecord{Clients: []Client{}}
}

// Clone returns a deep copy of the record via JSON round-trip. Records are
// plain data, so this is safe and keeps the copy logic in one place.
func (r *TransactionRecord) Clone() *TransactionRecord {
	raw, err := json.Marshal(r)
	if err != nil {
		cp := *r
		cp.Clients = append([]Client(nil), r.Clients...)
		return &cp
	}
	var cp TransactionRecord
	if err := json.Unmarshal(raw, &cp); err != nil {
		dup := *r
		dup.Clients = append([]Client(nil), r.Clients...)
		return &dup
	}
	if cp.Clients == nil {
		cp.Clients = []Client{}
	}
	return &cp
}
