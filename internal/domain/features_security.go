package domain

// RefSupport is a Support whose detail is only a citation.
type RefSupport = Support[WithRef]

type ScamURLWarning struct {
	LeaksVisitedURL  string `json:"leaksVisitedUrl,omitempty"`
	LeaksUserAddress bool   `json:"leaksUserAddress"`
	LeaksIP          bool   `json:"leaksIp"`
	WithRef
}

type ContractTransactionWarning struct {
	PreviousContractInteractionWarning bool `json:"previousContractInteractionWarning"`
	RecentContractWarning              bool `json:"recentContractWarning"`
	ContractRegistry                   bool `json:"contractRegistry"`
	LeaksContractAddress               bool `json:"leaksContractAddress"`
	LeaksUserAddress                   bool `json:"leaksUserAddress"`
	LeaksUserIP                        bool `json:"leaksUserIp"`
	WithRef
}

type SendTransactionWarning struct {
	NewRecipientWarning bool `json:"newRecipientWarning"`
	UserWhitelist       bool `json:"userWhitelist"`
	LeaksRecipient      bool `json:"leaksRecipient"`
	LeaksUserAddress    bool `json:"leaksUserAddress"`
	LeaksUserIP         bool `json:"leaksUserIp"`
	WithRef
}

type ScamAlerts struct {
	ScamURLWarning             Support[ScamURLWarning]             `json:"scamUrlWarning"`
	ContractTransactionWarning Support[ContractTransactionWarning] `json:"contractTransactionWarning"`
	SendTransactionWarning     Support[SendTransactionWarning]     `json:"sendTransactionWarning"`
}

// References concatenates the citations of every supported alert.
func (s ScamAlerts) References() References {
	var out References
	out = append(out, s.ScamURLWarning.References()...)
	out = append(out, s.ContractTransactionWarning.References()...)
	out = append(out, s.SendTransactionWarning.References()...)
	return out
}

type LightClientSupport struct {
	LightClient string `json:"lightClient,omitempty"`
	WithRef
}

type HardwareWalletType string

const (
	HardwareLedger   HardwareWalletType = "LEDGER"
	HardwareTrezor   HardwareWalletType = "TREZOR"
	HardwareKeystone HardwareWalletType = "KEYSTONE"
	HardwareGridPlus HardwareWalletType = "GRIDPLUS"
	HardwareOther    HardwareWalletType = "OTHER"
)

type HardwareWalletSupport struct {
	SupportedWallets map[HardwareWalletType]RefSupport `json:"supportedWallets"`
	WithRef
}

// Supported lists the hardware wallet types marked supported, in a stable order.
func (h HardwareWalletSupport) Supported() []HardwareWalletType {
	var out []HardwareWalletType
	for _, t := range []HardwareWalletType{HardwareLedger, HardwareTrezor, HardwareKeystone, HardwareGridPlus, HardwareOther} {
		if s, ok := h.SupportedWallets[t]; ok && s.IsSupported() {
			out = append(out, t)
		}
	}
	return out
}

type ClearSigningLevel string

const (
	ClearSigningNone    ClearSigningLevel = "NONE"
	ClearSigningBasic   ClearSigningLevel = "BASIC"
	ClearSigningPartial ClearSigningLevel = "PARTIAL"
	ClearSigningFull    ClearSigningLevel = "FULL"
)

type ClearSigningSupport struct {
	Level   ClearSigningLevel `json:"level"`
	Details string            `json:"details,omitempty"`
}

type HardwareWalletClearSigning struct {
	ClearSigningSupport ClearSigningSupport `json:"clearSigningSupport"`
	WithRef
}

type PasskeyLibrary string

const (
	PasskeyNone              PasskeyLibrary = "NONE"
	PasskeyDaimoP256Verifier PasskeyLibrary = "DAIMO_P256_VERIFIER"
	PasskeyFreshCryptoLib    PasskeyLibrary = "FRESH_CRYPTO_LIB"
	PasskeyOpenZeppelin      PasskeyLibrary = "OPEN_ZEPPELIN_P256_VERIFIER"
	PasskeySmoothCryptoLib   PasskeyLibrary = "SMOOTH_CRYPTO_LIB"
	PasskeyWebAuthnSol       PasskeyLibrary = "WEB_AUTHN_SOL"
	PasskeyOther             PasskeyLibrary = "OTHER"
)

type PasskeyVerification struct {
	Library    PasskeyLibrary   `json:"library,omitempty"`
	Libraries  []PasskeyLibrary `json:"libraries,omitempty"`
	LibraryURL string           `json:"libraryUrl,omitempty"`
	Details    string           `json:"details,omitempty"`
	WithRef
}

func (l PasskeyLibrary) Name() string {
	switch l {
	case PasskeyDaimoP256Verifier:
		return "Daimo P256 verifier"
	case PasskeyFreshCryptoLib:
		return "FreshCryptoLib"
	case PasskeyOpenZeppelin:
		return "OpenZeppelin P256 verifier"
	case PasskeySmoothCryptoLib:
		return "SmoothCryptoLib"
	case PasskeyWebAuthnSol:
		return "WebAuthn.sol"
	case PasskeyOther:
		return "a custom library"
	}
	return string(l)
}

// AllLibraries merges the single and multi-library forms, skipping NONE.
func (p PasskeyVerification) AllLibraries() []PasskeyLibrary {
	var out []PasskeyLibrary
	if p.Library != "" && p.Library != PasskeyNone {
		out = append(out, p.Library)
	}
	for _, l := range p.Libraries {
		if l != PasskeyNone && l != p.Library {
			out = append(out, l)
		}
	}
	return out
}

type BugBountyProgramType string

const (
	BugBountyComprehensive BugBountyProgramType = "COMPREHENSIVE"
	BugBountyBasic         BugBountyProgramType = "BASIC"
	BugBountyNone          BugBountyProgramType = "NONE"
)

type BugBountyProgram struct {
	Type                 BugBountyProgramType `json:"type"`
	URL                  string               `json:"url,omitempty"`
	Details              string               `json:"details,omitempty"`
	UpgradePathAvailable bool                 `json:"upgradePathAvailable"`
	WithRef
}
