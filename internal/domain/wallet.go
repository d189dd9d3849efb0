package domain

import (
	"encoding/json"
	"fmt"
)

type WalletTypeCategory string

const (
	WalletTypeEOA            WalletTypeCategory = "EOA"
	WalletTypeSmartWallet    WalletTypeCategory = "SMART_WALLET"
	WalletTypeHardwareWallet WalletTypeCategory = "HARDWARE_WALLET"
)

type SmartWalletStandard string

const StandardERC4337 SmartWalletStandard = "ERC_4337"

type MultiWalletType struct {
	Categories           []WalletTypeCategory  `json:"categories"`
	SmartWalletStandards []SmartWalletStandard `json:"smartWalletStandards,omitempty"`
}

type HardwareWalletManufactureType string

const (
	ManufactureFactoryMade HardwareWalletManufactureType = "FACTORY_MADE"
	ManufactureDIY         HardwareWalletManufactureType = "DIY"
)

type PseudonymType struct {
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
}

// Contributor is authored as a name or as {name, url}.
type Contributor struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

func (c *Contributor) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Contributor{Name: name}
		return nil
	}
	type plain Contributor
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("contributor: %w", err)
	}
	*c = Contributor(p)
	return nil
}

type Metadata struct {
	ID                            string                        `json:"id"`
	DisplayName                   string                        `json:"displayName"`
	TableName                     string                        `json:"tableName"`
	IconExtension                 string                        `json:"iconExtension,omitempty"`
	Blurb                         string                        `json:"blurb"`
	PseudonymType                 *PseudonymType                `json:"pseudonymType,omitempty"`
	URL                           string                        `json:"url"`
	RepoURL                       string                        `json:"repoUrl,omitempty"`
	Contributors                  []Contributor                 `json:"contributors"`
	LastUpdated                   Date                          `json:"lastUpdated"`
	MultiWalletType               *MultiWalletType              `json:"multiWalletType,omitempty"`
	HardwareWalletManufactureType HardwareWalletManufactureType `json:"hardwareWalletManufactureType,omitempty"`
}

type AttributeOverride struct {
	Note string `json:"note"`
}

// Overrides attach human commentary to attributes, keyed by category then attribute id.
type Overrides struct {
	Attributes map[string]map[string]AttributeOverride `json:"attributes"`
}

// Wallet is one authored wallet document.
type Wallet struct {
	Metadata  Metadata       `json:"metadata"`
	Features  WalletFeatures `json:"features"`
	Variants  Variants       `json:"variants"`
	Overrides *Overrides     `json:"overrides,omitempty"`
}

func (w *Wallet) ID() string { return w.Metadata.ID }

// OverrideNote returns the authored note for an attribute, or "".
func (w *Wallet) OverrideNote(category, attribute string) string {
	if w.Overrides == nil {
		return ""
	}
	return w.Overrides.Attributes[category][attribute].Note
}

// PickVariant returns v when the wallet declares it, or the default variant when v is empty.
func (w *Wallet) PickVariant(v Variant) (Variant, error) {
	if v == "" {
		if d := w.Variants.Default(); d != "" {
			return d, nil
		}
		return "", fmt.Errorf("wallet %s: %w", w.ID(), ErrNoVariants)
	}
	if !w.Variants.Has(v) {
		return "", fmt.Errorf("wallet %s does not ship %s: %w", w.ID(), v, ErrUnsupportedVariant)
	}
	return v, nil
}

// Resolve picks a declared variant and resolves the feature tree for it.
func (w *Wallet) Resolve(v Variant) (ResolvedFeatures, error) {
	picked, err := w.PickVariant(v)
	if err != nil {
		return ResolvedFeatures{}, err
	}
	return ResolveFeatures(w.Features, picked), nil
}
