package references

import (
	"errors"
	"fmt"
)

var ErrUnknownAttribute = errors.New("unknown attribute")

type Category string

const (
	CategoryPrivacy         Category = "privacy"
	CategorySelfSovereignty Category = "selfSovereignty"
	CategoryTransparency    Category = "transparency"
	CategorySecurity        Category = "security"
	CategoryEcosystem       Category = "ecosystem"
)

// Attribute identifies one rated attribute of a wallet.
type Attribute struct {
	Category Category `json:"category"`
	ID       string   `json:"id"`
}

func (a Attribute) String() string { return string(a.Category) + "/" + a.ID }

var (
	MultiAddressCorrelation    = Attribute{CategoryPrivacy, "multiAddressCorrelation"}
	AddressCorrelation         = Attribute{CategoryPrivacy, "addressCorrelation"}
	TransactionSubmission      = Attribute{CategorySelfSovereignty, "transactionSubmission"}
	SelfHostedNode             = Attribute{CategorySelfSovereignty, "selfHostedNode"}
	AccountPortability         = Attribute{CategorySelfSovereignty, "accountPortability"}
	TransactionInclusion       = Attribute{CategorySelfSovereignty, "transactionInclusion"}
	FeeTransparency            = Attribute{CategoryTransparency, "feeTransparency"}
	Funding                    = Attribute{CategoryTransparency, "funding"}
	OpenSource                 = Attribute{CategoryTransparency, "openSource"}
	SourceVisibility           = Attribute{CategoryTransparency, "sourceVisibility"}
	SecurityAudits             = Attribute{CategorySecurity, "securityAudits"}
	ScamPrevention             = Attribute{CategorySecurity, "scamPrevention"}
	BugBountyProgram           = Attribute{CategorySecurity, "bugBountyProgram"}
	ChainVerification          = Attribute{CategorySecurity, "chainVerification"}
	HardwareWalletSupport      = Attribute{CategorySecurity, "hardwareWalletSupport"}
	HardwareWalletClearSigning = Attribute{CategorySecurity, "hardwareWalletClearSigning"}
	PasskeyImplementation      = Attribute{CategorySecurity, "passkeyImplementation"}
	AddressResolution          = Attribute{CategoryEcosystem, "addressResolution"}
	AccountAbstraction         = Attribute{CategoryEcosystem, "accountAbstraction"}
)

// Attributes lists every attribute that has references, grouped by category.
var Attributes = []Attribute{
	MultiAddressCorrelation,
	AddressCorrelation,
	TransactionSubmission,
	SelfHostedNode,
	AccountPortability,
	TransactionInclusion,
	FeeTransparency,
	Funding,
	OpenSource,
	SourceVisibility,
	SecurityAudits,
	ScamPrevention,
	BugBountyProgram,
	ChainVerification,
	HardwareWalletSupport,
	HardwareWalletClearSigning,
	PasskeyImplementation,
	AddressResolution,
	AccountAbstraction,
}

// ParseAttribute validates a (category, id) pair.
func ParseAttribute(category, id string) (Attribute, error) {
	a := Attribute{Category(category), id}
	for _, known := range Attributes {
		if known == a {
			return a, nil
		}
	}
	return Attribute{}, fmt.Errorf("%w: %s", ErrUnknownAttribute, a)
}
