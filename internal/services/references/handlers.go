package references

import (
	"fmt"
	"net/url"
	"strings"

	"walletcat/internal/domain"
)

type fqRefs = []domain.FullyQualifiedReference

// input is what every handler sees: the wallet, and its features for one variant.
type input struct {
	wallet *domain.Wallet
	f      domain.ResolvedFeatures
}

func (in input) name() string {
	if in.wallet.Metadata.DisplayName != "" {
		return in.wallet.Metadata.DisplayName
	}
	return in.wallet.ID()
}

type handler func(in input) fqRefs

// strategy is tried in order: primary, then the fallback table, then guess.
// When applies is set and returns false, none of them run.
type strategy struct {
	applies func(in input) bool
	primary handler
	guess   handler
}

var strategies = map[Attribute]strategy{
	MultiAddressCorrelation:    {primary: multiAddressCorrelation},
	AddressCorrelation:         {primary: addressCorrelation},
	TransactionSubmission:      {primary: transactionSubmission},
	SelfHostedNode:             {primary: selfHostedNode},
	AccountPortability:         {primary: accountPortability},
	TransactionInclusion:       {primary: transactionInclusion},
	FeeTransparency:            {primary: feeTransparency},
	Funding:                    {primary: funding},
	OpenSource:                 {applies: hasLicenseAndRepo, primary: openSource, guess: licenseFileGuess},
	SourceVisibility:           {primary: sourceVisibility},
	SecurityAudits:             {primary: securityAudits},
	ScamPrevention:             {applies: hasScamAlerts, primary: scamPrevention},
	BugBountyProgram:           {primary: bugBountyProgram},
	ChainVerification:          {primary: chainVerification},
	HardwareWalletSupport:      {primary: hardwareWalletSupport},
	HardwareWalletClearSigning: {primary: hardwareWalletClearSigning},
	PasskeyImplementation:      {primary: passkeyImplementation},
	AddressResolution:          {primary: addressResolution},
	AccountAbstraction:         {primary: accountAbstraction},
}

func multiAddressCorrelation(in input) fqRefs {
	dc := in.f.Privacy.DataCollection
	if dc == nil {
		return nil
	}
	var out fqRefs
	for _, e := range dc.WithMultiAddressPolicy() {
		name := e.Entity.Name("Service provider")
		out = append(out, e.Leaks.Ref.Qualify(name, fmt.Sprintf("How %s handles multiple addresses", name))...)
	}
	return out
}

func addressCorrelation(in input) fqRefs {
	dc := in.f.Privacy.DataCollection
	if dc == nil {
		return nil
	}
	if out := dc.Onchain.Ref.Qualify("Onchain data collection", "How wallet addresses are handled onchain"); len(out) > 0 {
		return out
	}
	var out fqRefs
	for _, e := range dc.EntitiesLeaking(domain.LeakWalletAddress, domain.LeakOptIn) {
		name := e.Entity.Name("Service provider")
		out = append(out, e.Leaks.Ref.Qualify(name, fmt.Sprintf("How %s handles wallet address privacy", name))...)
	}
	return out
}

func transactionSubmission(in input) fqRefs {
	ts := in.f.SelfSovereignty.TransactionSubmission
	if ts == nil {
		return nil
	}
	out := ts.Ref.Qualify("Transaction submission", "Information about transaction submission options")
	out = append(out, ts.L1.SelfBroadcastViaDirectGossip.References().
		Qualify("Direct L1 broadcasting", "Self-broadcasting transactions via direct gossip protocol")...)
	if ts.L2.OpStack != nil {
		out = append(out, ts.L2.OpStack.Ref.Qualify("Optimism stack support", "Support for self-broadcasting on OP Stack")...)
	}
	return out
}

func selfHostedNode(in input) fqRefs {
	ts := in.f.SelfSovereignty.TransactionSubmission
	if ts == nil {
		return nil
	}
	return ts.L1.SelfBroadcastViaSelfHostedNode.References().
		Qualify("Self-hosted node support", "Information about self-hosted node support")
}

func accountPortability(in input) fqRefs {
	as := in.f.AccountSupport
	if as == nil {
		return nil
	}
	refs := append(domain.References{}, as.Ref...)
	refs = append(refs, as.PortabilityReferences()...)
	return refs.Qualify("Account portability", "Information about account portability features")
}

func transactionInclusion(in input) fqRefs {
	ts := in.f.SelfSovereignty.TransactionSubmission
	if ts == nil {
		return nil
	}
	var refs domain.References
	for _, l2 := range []*domain.L2Inclusion{ts.L2.OpStack, ts.L2.Arbitrum} {
		if l2 != nil {
			refs = append(refs, l2.Ref...)
		}
	}
	return refs.Qualify("L2 transaction inclusion", "Information about L2 transaction inclusion features")
}

func feeTransparency(in input) fqRefs {
	ft := in.f.Transparency.FeeTransparency
	if ft == nil {
		return nil
	}
	return ft.Ref.Qualify("Fee information", "Information about fee transparency and disclosure")
}

func funding(in input) fqRefs {
	m := in.f.Monetization
	if m == nil {
		return nil
	}
	return m.Ref.Qualify("Funding source", fmt.Sprintf("%s's funding information", in.name()))
}

// A license is only cited for wallets whose source can be found.
func hasLicenseAndRepo(in input) bool {
	return in.f.License != nil && in.wallet.Metadata.RepoURL != ""
}

func hasScamAlerts(in input) bool { return in.f.Security.ScamAlerts != nil }

func openSource(in input) fqRefs {
	lic := in.f.License
	if lic == nil {
		return nil
	}
	return lic.Ref.Qualify("", fmt.Sprintf("%s is licensed under %s", in.name(), lic.Value.Name()))
}

// licenseFileGuess cites the conventional license location when the license is known
// but nobody linked it.
func licenseFileGuess(in input) fqRefs {
	repo := strings.TrimSuffix(in.wallet.Metadata.RepoURL, "/")
	if repo == "" || in.f.License == nil {
		return nil
	}
	r := domain.Ref(repo+"/blob/master/LICENSE", fmt.Sprintf("%s's license file in the source code repository", in.name()))
	return domain.References{r}.Qualify(in.name()+" License File", "")
}

func sourceVisibility(in input) fqRefs {
	repo := in.wallet.Metadata.RepoURL
	if repo == "" {
		return nil
	}
	explanation := fmt.Sprintf("%s's source code is publicly available", in.name())
	if u, err := url.Parse(repo); err == nil && strings.TrimPrefix(u.Hostname(), "www.") == "github.com" {
		explanation += " on GitHub"
	}
	return domain.References{domain.Ref(repo, "")}.Qualify(in.name()+" Repository", explanation)
}

func securityAudits(in input) fqRefs {
	latest, ok := domain.MostRecentAudit(in.f.Security.PublicSecurityAudits)
	if !ok {
		return nil
	}
	auditor := latest.Auditor.Name(latest.Auditor.ID)
	suffix := ""
	if latest.UnpatchedFlaws.Kind == domain.OutcomeAllFixed {
		suffix = " with all faults addressed"
	}
	explanation := fmt.Sprintf("%s was last audited on %s by %s%s.", in.name(), latest.AuditDate, auditor, suffix)
	return latest.Ref.Qualify(auditor+" Audit Report", explanation)
}

func scamPrevention(in input) fqRefs {
	sa := in.f.Security.ScamAlerts
	if sa == nil {
		return nil
	}
	return sa.References().Qualify("", fmt.Sprintf("How %s warns users about scams", in.name()))
}

func bugBountyProgram(in input) fqRefs {
	bb := in.f.Security.BugBountyProgram
	if bb == nil {
		return nil
	}
	fallback := fmt.Sprintf("%s runs a bug bounty program", in.name())
	if out := bb.Ref.Qualify("", fallback); len(out) > 0 {
		return out
	}
	if bb.URL == "" {
		return nil
	}
	return domain.References{domain.Ref(bb.URL, bb.Details)}.Qualify("Bug bounty program", fallback)
}

func chainVerification(in input) fqRefs {
	lc := in.f.Security.LightClient.EthereumL1
	if lc == nil {
		return nil
	}
	return lc.References().Qualify("Ethereum L1 Light Client", "Information about chain verification capabilities")
}

func hardwareWalletSupport(in input) fqRefs {
	hw := in.f.Security.HardwareWalletSupport
	if hw == nil {
		return nil
	}
	out := hw.Ref.Qualify("Hardware wallet support", fmt.Sprintf("Hardware wallets supported by %s", in.name()))
	for _, t := range hw.Supported() {
		s := hw.SupportedWallets[t]
		out = append(out, s.References().Qualify("Hardware wallet support", fmt.Sprintf("How %s works with %s", in.name(), hardwareName(t)))...)
	}
	return out
}

func hardwareName(t domain.HardwareWalletType) string {
	switch t {
	case domain.HardwareGridPlus:
		return "GridPlus"
	case domain.HardwareOther:
		return "other hardware wallets"
	}
	s := string(t)
	return s[:1] + strings.ToLower(s[1:])
}

func hardwareWalletClearSigning(in input) fqRefs {
	cs := in.f.Security.HardwareWalletClearSigning
	if cs == nil {
		return nil
	}
	return cs.Ref.Qualify("Clear signing", fmt.Sprintf("How %s displays transactions before signing", in.name()))
}

func passkeyImplementation(in input) fqRefs {
	pv := in.f.Security.PasskeyVerification
	if pv == nil {
		return nil
	}
	fallback := fmt.Sprintf("How %s verifies passkey signatures", in.name())
	if libs := pv.AllLibraries(); len(libs) > 0 {
		names := make([]string, len(libs))
		for i, l := range libs {
			names[i] = l.Name()
		}
		fallback = fmt.Sprintf("%s verifies passkey signatures with %s", in.name(), strings.Join(names, ", "))
	}
	out := pv.Ref.Qualify("Passkey verification", fallback)
	if len(out) == 0 && pv.LibraryURL != "" {
		out = domain.References{domain.Ref(pv.LibraryURL, pv.Details)}.Qualify("Passkey verification library", fallback)
	}
	return out
}

func addressResolution(in input) fqRefs {
	ar := in.f.AddressResolution
	if ar == nil {
		return nil
	}
	general := fmt.Sprintf("%s supports various address resolution systems that make sending to human-readable names possible.", in.name())
	if out := ar.Ref.Qualify("Address resolution", general); len(out) > 0 {
		return out
	}
	out := ar.NonChainSpecificEnsResolution.References().
		Qualify("ENS resolution", fmt.Sprintf("%s supports ENS resolution for human-readable addresses.", in.name()))
	out = append(out, ar.ChainSpecificAddressing.ERC7828.References().
		Qualify("ERC-7828 support", fmt.Sprintf("%s supports chain-specific addresses through ERC-7828.", in.name()))...)
	out = append(out, ar.ChainSpecificAddressing.ERC7831.References().
		Qualify("ERC-7831 support", fmt.Sprintf("%s supports chain-specific addresses through ERC-7831.", in.name()))...)
	return out
}

func accountAbstraction(in input) fqRefs {
	as := in.f.AccountSupport
	if as == nil {
		return nil
	}
	out := as.RawERC4337.References().
		Qualify("ERC-4337 support", fmt.Sprintf("%s supports account abstraction through the ERC-4337 standard.", in.name()))
	out = append(out, as.EIP7702.References().
		Qualify("EIP-7702 support", fmt.Sprintf("%s supports account abstraction through the EIP-7702 standard.", in.name()))...)
	return out
}
