package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const notABrowserWallet = "NOT_A_BROWSER_WALLET"

// BrowserIntegration is "NOT_A_BROWSER_WALLET" or the supported provider EIPs.
type BrowserIntegration struct {
	NotABrowserWallet bool
	EIP1193           RefSupport
	EIP2700           RefSupport
	EIP6963           RefSupport
	Ref               References
}

func (b BrowserIntegration) References() References { return b.Ref }

type browserIntegrationJSON struct {
	EIP1193 RefSupport `json:"1193"`
	EIP2700 RefSupport `json:"2700"`
	EIP6963 RefSupport `json:"6963"`
	Ref     References `json:"ref,omitempty"`
}

func (b *BrowserIntegration) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		if s != notABrowserWallet {
			return fmt.Errorf("browser integration: unknown value %q", s)
		}
		*b = BrowserIntegration{NotABrowserWallet: true}
		return nil
	}
	var obj browserIntegrationJSON
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("browser integration: %w", err)
	}
	*b = BrowserIntegration{EIP1193: obj.EIP1193, EIP2700: obj.EIP2700, EIP6963: obj.EIP6963, Ref: obj.Ref}
	return nil
}

func (b BrowserIntegration) MarshalJSON() ([]byte, error) {
	if b.NotABrowserWallet {
		return json.Marshal(notABrowserWallet)
	}
	return json.Marshal(browserIntegrationJSON{EIP1193: b.EIP1193, EIP2700: b.EIP2700, EIP6963: b.EIP6963, Ref: b.Ref})
}

// WalletIntegration is not variant-dependent.
type WalletIntegration struct {
	Browser *BrowserIntegration `json:"browser,omitempty"`
}

type License string

const (
	LicenseMIT         License = "MIT"
	LicenseApache20    License = "APACHE_2_0"
	LicenseGPL30       License = "GPL_3_0"
	LicenseBSD3Clause  License = "BSD_3_CLAUSE"
	LicenseBUSL11      License = "BUSL_1_1"
	LicenseUnlicensed  License = "UNLICENSED_VISIBLE"
	LicenseProprietary License = "PROPRIETARY"
)

// Name is the SPDX-like display name.
func (l License) Name() string {
	switch l {
	case LicenseMIT:
		return "MIT"
	case LicenseApache20:
		return "Apache-2.0"
	case LicenseGPL30:
		return "GPL-3.0"
	case LicenseBSD3Clause:
		return "BSD-3-Clause"
	case LicenseBUSL11:
		return "BUSL-1.1"
	case LicenseUnlicensed:
		return "Source visible, unlicensed"
	case LicenseProprietary:
		return "Proprietary"
	}
	return string(l)
}

func (l License) IsFOSS() bool {
	switch l {
	case LicenseMIT, LicenseApache20, LicenseGPL30, LicenseBSD3Clause:
		return true
	}
	return false
}

// LicenseInfo is authored as a bare license or as {value, ref}.
type LicenseInfo struct {
	Value License
	Ref   References
}

func (l LicenseInfo) References() References { return l.Ref }

func (l *LicenseInfo) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*l = LicenseInfo{Value: License(s)}
		return nil
	}
	var obj struct {
		Value License    `json:"value"`
		Ref   References `json:"ref"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("license: %w", err)
	}
	*l = LicenseInfo{Value: obj.Value, Ref: obj.Ref}
	return nil
}

func (l LicenseInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value License    `json:"value"`
		Ref   References `json:"ref,omitempty"`
	}{l.Value, l.Ref})
}

// MonetizationStrategies are tri-state: nil means not yet investigated.
type MonetizationStrategies struct {
	SelfFunded                       *bool `json:"selfFunded"`
	Donations                        *bool `json:"donations"`
	EcosystemGrants                  *bool `json:"ecosystemGrants"`
	PublicOffering                   *bool `json:"publicOffering"`
	VentureCapital                   *bool `json:"ventureCapital"`
	TransparentConvenienceFees       *bool `json:"transparentConvenienceFees"`
	HiddenConvenienceFees            *bool `json:"hiddenConvenienceFees"`
	GovernanceTokenLowFloat          *bool `json:"governanceTokenLowFloat"`
	GovernanceTokenMostlyDistributed *bool `json:"governanceTokenMostlyDistributed"`
}

type StrategyValue struct {
	Strategy string `json:"strategy"`
	Name     string `json:"name"`
	Value    *bool  `json:"value"`
}

// List returns every strategy with its display name, in display order.
func (s MonetizationStrategies) List() []StrategyValue {
	return []StrategyValue{
		{"selfFunded", "Self-funded by the developer", s.SelfFunded},
		{"donations", "Donations", s.Donations},
		{"ecosystemGrants", "Ecosystem grants", s.EcosystemGrants},
		{"publicOffering", "Public offering", s.PublicOffering},
		{"ventureCapital", "Venture capital", s.VentureCapital},
		{"transparentConvenienceFees", "Transparent convenience fees", s.TransparentConvenienceFees},
		{"hiddenConvenienceFees", "Hidden convenience fees", s.HiddenConvenienceFees},
		{"governanceTokenLowFloat", "Governance token (low float)", s.GovernanceTokenLowFloat},
		{"governanceTokenMostlyDistributed", "Governance token (mostly distributed)", s.GovernanceTokenMostlyDistributed},
	}
}

// Active returns the strategies known to be in use.
func (s MonetizationStrategies) Active() []StrategyValue {
	var out []StrategyValue
	for _, v := range s.List() {
		if v.Value != nil && *v.Value {
			out = append(out, v)
		}
	}
	return out
}

type Monetization struct {
	RevenueBreakdownIsPublic bool                   `json:"revenueBreakdownIsPublic"`
	Strategies               MonetizationStrategies `json:"strategies"`
	WithRef
}
