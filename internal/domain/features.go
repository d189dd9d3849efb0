package domain

type WalletProfile string

const (
	ProfileGeneric  WalletProfile = "GENERIC"
	ProfileMobile   WalletProfile = "MOBILE"
	ProfilePayments WalletProfile = "PAYMENTS"
	ProfileHardware WalletProfile = "HARDWARE"
)

type LightClientFeatures struct {
	EthereumL1 VariantFeature[Support[LightClientSupport]] `json:"ethereumL1"`
}

type SecurityFeatures struct {
	ScamAlerts VariantFeature[ScamAlerts] `json:"scamAlerts"`
	// PublicSecurityAudits is nil when nobody has checked, empty when there are none.
	PublicSecurityAudits       []SecurityAudit                            `json:"publicSecurityAudits"`
	LightClient                LightClientFeatures                        `json:"lightClient"`
	HardwareWalletSupport      VariantFeature[HardwareWalletSupport]      `json:"hardwareWalletSupport"`
	HardwareWalletClearSigning VariantFeature[HardwareWalletClearSigning] `json:"hardwareWalletClearSigning"`
	PasskeyVerification        VariantFeature[PasskeyVerification]        `json:"passkeyVerification"`
	BugBountyProgram           VariantFeature[BugBountyProgram]           `json:"bugBountyProgram"`
}

type PrivacyFeatures struct {
	DataCollection VariantFeature[DataCollection] `json:"dataCollection"`
	PrivacyPolicy  VariantFeature[string]         `json:"privacyPolicy"`
}

type SelfSovereigntyFeatures struct {
	TransactionSubmission VariantFeature[TransactionSubmission] `json:"transactionSubmission"`
}

type TransparencyFeatures struct {
	FeeTransparency VariantFeature[FeeTransparency] `json:"feeTransparency"`
}

// WalletFeatures is the authored feature tree. Leaves that may differ by variant are VariantFeatures.
type WalletFeatures struct {
	Profile              WalletProfile                        `json:"profile"`
	Security             SecurityFeatures                     `json:"security"`
	Privacy              PrivacyFeatures                      `json:"privacy"`
	SelfSovereignty      SelfSovereigntyFeatures              `json:"selfSovereignty"`
	ChainConfigurability VariantFeature[ChainConfigurability] `json:"chainConfigurability"`
	AccountSupport       VariantFeature[AccountSupport]       `json:"accountSupport"`
	MultiAddress         VariantFeature[RefSupport]           `json:"multiAddress"`
	Integration          WalletIntegration                    `json:"integration"`
	AddressResolution    VariantFeature[AddressResolution]    `json:"addressResolution"`
	License              VariantFeature[LicenseInfo]          `json:"license"`
	Monetization         VariantFeature[Monetization]         `json:"monetization"`
	Transparency         TransparencyFeatures                 `json:"transparency"`
}

// VariantKeyed is implemented by every VariantFeature.
type VariantKeyed interface {
	VariantKeys() ([]Variant, bool)
	IsUnknown() bool
}

// FeatureLeaf names one variant-dependent leaf of the tree.
type FeatureLeaf struct {
	Path string
	Leaf VariantKeyed
}

// Leaves lists every variant-dependent leaf with its dotted path.
func (f *WalletFeatures) Leaves() []FeatureLeaf {
	return []FeatureLeaf{
		{"security.scamAlerts", f.Security.ScamAlerts},
		{"security.lightClient.ethereumL1", f.Security.LightClient.EthereumL1},
		{"security.hardwareWalletSupport", f.Security.HardwareWalletSupport},
		{"security.hardwareWalletClearSigning", f.Security.HardwareWalletClearSigning},
		{"security.passkeyVerification", f.Security.PasskeyVerification},
		{"security.bugBountyProgram", f.Security.BugBountyProgram},
		{"privacy.dataCollection", f.Privacy.DataCollection},
		{"privacy.privacyPolicy", f.Privacy.PrivacyPolicy},
		{"selfSovereignty.transactionSubmission", f.SelfSovereignty.TransactionSubmission},
		{"chainConfigurability", f.ChainConfigurability},
		{"accountSupport", f.AccountSupport},
		{"multiAddress", f.MultiAddress},
		{"addressResolution", f.AddressResolution},
		{"license", f.License},
		{"monetization", f.Monetization},
		{"transparency.feeTransparency", f.Transparency.FeeTransparency},
	}
}

// EntityRefs returns pointers to every entity reference in the tree, across all variants.
func (f *WalletFeatures) EntityRefs() []*EntityRef {
	var out []*EntityRef
	for i := range f.Security.PublicSecurityAudits {
		out = append(out, &f.Security.PublicSecurityAudits[i].Auditor)
	}
	for _, dc := range f.Privacy.DataCollection.Values() {
		for i := range dc.CollectedByEntities {
			out = append(out, &dc.CollectedByEntities[i].Entity)
		}
	}
	return out
}

type ResolvedLightClient struct {
	EthereumL1 *Support[LightClientSupport] `json:"ethereumL1"`
}

type ResolvedSecurity struct {
	ScamAlerts                 *ScamAlerts                 `json:"scamAlerts"`
	PublicSecurityAudits       []SecurityAudit             `json:"publicSecurityAudits"`
	LightClient                ResolvedLightClient         `json:"lightClient"`
	HardwareWalletSupport      *HardwareWalletSupport      `json:"hardwareWalletSupport"`
	HardwareWalletClearSigning *HardwareWalletClearSigning `json:"hardwareWalletClearSigning"`
	PasskeyVerification        *PasskeyVerification        `json:"passkeyVerification"`
	BugBountyProgram           *BugBountyProgram           `json:"bugBountyProgram"`
}

type ResolvedPrivacy struct {
	DataCollection *DataCollection `json:"dataCollection"`
	PrivacyPolicy  *string         `json:"privacyPolicy"`
}

type ResolvedSelfSovereignty struct {
	TransactionSubmission *TransactionSubmission `json:"transactionSubmission"`
}

type ResolvedTransparency struct {
	FeeTransparency *FeeTransparency `json:"feeTransparency"`
}

// ResolvedFeatures is WalletFeatures collapsed to one variant. A nil leaf means unknown.
type ResolvedFeatures struct {
	Variant              Variant                 `json:"variant"`
	Profile              WalletProfile           `json:"profile"`
	Security             ResolvedSecurity        `json:"security"`
	Privacy              ResolvedPrivacy         `json:"privacy"`
	SelfSovereignty      ResolvedSelfSovereignty `json:"selfSovereignty"`
	ChainConfigurability *ChainConfigurability   `json:"chainConfigurability"`
	AccountSupport       *AccountSupport         `json:"accountSupport"`
	MultiAddress         *RefSupport             `json:"multiAddress"`
	Integration          WalletIntegration       `json:"integration"`
	AddressResolution    *AddressResolution      `json:"addressResolution"`
	License              *LicenseInfo            `json:"license"`
	Monetization         *Monetization           `json:"monetization"`
	Transparency         ResolvedTransparency    `json:"transparency"`
}
