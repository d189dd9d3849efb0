package domain

// ResolveFeatures collapses every variant-dependent leaf to its value for v.
// It does not check that the wallet ships v: leaves with no entry for v resolve to nil.
func ResolveFeatures(f WalletFeatures, v Variant) ResolvedFeatures {
	return ResolvedFeatures{
		Variant: v,
		Profile: f.Profile,
		Security: ResolvedSecurity{
			ScamAlerts:           f.Security.ScamAlerts.Resolve(v),
			PublicSecurityAudits: auditsInScope(f.Security.PublicSecurityAudits, v),
			LightClient: ResolvedLightClient{
				EthereumL1: f.Security.LightClient.EthereumL1.Resolve(v),
			},
			HardwareWalletSupport:      f.Security.HardwareWalletSupport.Resolve(v),
			HardwareWalletClearSigning: f.Security.HardwareWalletClearSigning.Resolve(v),
			PasskeyVerification:        f.Security.PasskeyVerification.Resolve(v),
			BugBountyProgram:           f.Security.BugBountyProgram.Resolve(v),
		},
		Privacy: ResolvedPrivacy{
			DataCollection: f.Privacy.DataCollection.Resolve(v),
			PrivacyPolicy:  f.Privacy.PrivacyPolicy.Resolve(v),
		},
		SelfSovereignty: ResolvedSelfSovereignty{
			TransactionSubmission: f.SelfSovereignty.TransactionSubmission.Resolve(v),
		},
		ChainConfigurability: f.ChainConfigurability.Resolve(v),
		AccountSupport:       f.AccountSupport.Resolve(v),
		MultiAddress:         f.MultiAddress.Resolve(v),
		Integration:          f.Integration,
		AddressResolution:    f.AddressResolution.Resolve(v),
		License:              f.License.Resolve(v),
		Monetization:         f.Monetization.Resolve(v),
		Transparency: ResolvedTransparency{
			FeeTransparency: f.Transparency.FeeTransparency.Resolve(v),
		},
	}
}

// auditsInScope keeps authored order. nil (never checked) stays nil.
func auditsInScope(audits []SecurityAudit, v Variant) []SecurityAudit {
	if audits == nil {
		return nil
	}
	out := make([]SecurityAudit, 0, len(audits))
	for _, a := range audits {
		if a.VariantsScope.Includes(v) {
			out = append(out, a)
		}
	}
	return out
}
