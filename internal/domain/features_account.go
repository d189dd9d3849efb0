package domain

type RPCEndpointConfiguration string

const (
	RPCNeverUsed             RPCEndpointConfiguration = "NEVER_USED"
	RPCNo                    RPCEndpointConfiguration = "NO"
	RPCYesBeforeAnyRequest   RPCEndpointConfiguration = "YES_BEFORE_ANY_REQUEST"
	RPCYesAfterOtherRequests RPCEndpointConfiguration = "YES_AFTER_OTHER_REQUESTS"
)

type ChainConfigurability struct {
	L1RPCEndpoint     RPCEndpointConfiguration `json:"l1RpcEndpoint"`
	OtherRPCEndpoints RPCEndpointConfiguration `json:"otherRpcEndpoints"`
	CustomChains      bool                     `json:"customChains"`
	WithRef
}

type AccountType string

const (
	AccountEOA        AccountType = "eoa"
	AccountMPC        AccountType = "mpc"
	AccountRawERC4337 AccountType = "rawErc4337"
	AccountEIP7702    AccountType = "eip7702"
)

type TransactionGenerationCapability string

const (
	TxGenOpenSourceApp   TransactionGenerationCapability = "USING_OPEN_SOURCE_STANDALONE_APP"
	TxGenClosedSourceApp TransactionGenerationCapability = "USING_CLOSED_SOURCE_STANDALONE_APP"
	TxGenImpossible      TransactionGenerationCapability = "IMPOSSIBLE"
)

type KeyDerivation struct {
	Type                string `json:"type"`
	DerivationPath      string `json:"derivationPath,omitempty"`
	SeedPhrase          string `json:"seedPhrase,omitempty"`
	CanExportSeedPhrase bool   `json:"canExportSeedPhrase"`
}

type EOASupport struct {
	CanExportPrivateKey bool           `json:"canExportPrivateKey"`
	KeyDerivation       *KeyDerivation `json:"keyDerivation,omitempty"`
	WithRef
}

type ERC4337Support struct {
	ControllingSharesInSelfCustodyByDefault string                          `json:"controllingSharesInSelfCustodyByDefault,omitempty"`
	KeyRotationTransactionGeneration        TransactionGenerationCapability `json:"keyRotationTransactionGeneration,omitempty"`
	TokenTransferTransactionGeneration      TransactionGenerationCapability `json:"tokenTransferTransactionGeneration,omitempty"`
	WithRef
}

type AccountSupport struct {
	DefaultAccountType AccountType             `json:"defaultAccountType"`
	EOA                Support[EOASupport]     `json:"eoa"`
	MPC                RefSupport              `json:"mpc"`
	RawERC4337         Support[ERC4337Support] `json:"rawErc4337"`
	EIP7702            RefSupport              `json:"eip7702"`
	WithRef
}

// PortabilityReferences are the citations of the EOA-like account types, ERC-4337 first.
func (a AccountSupport) PortabilityReferences() References {
	var out References
	out = append(out, a.RawERC4337.References()...)
	out = append(out, a.EOA.References()...)
	out = append(out, a.MPC.References()...)
	return out
}

type ChainSpecificAddressing struct {
	ERC7828 RefSupport `json:"erc7828"`
	ERC7831 RefSupport `json:"erc7831"`
}

type AddressResolution struct {
	NonChainSpecificEnsResolution RefSupport              `json:"nonChainSpecificEnsResolution"`
	ChainSpecificAddressing       ChainSpecificAddressing `json:"chainSpecificAddressing"`
	WithRef
}

type FeeTransparencyLevel string

const (
	FeeTransparencyNone          FeeTransparencyLevel = "NONE"
	FeeTransparencyMinimal       FeeTransparencyLevel = "MINIMAL"
	FeeTransparencyBasic         FeeTransparencyLevel = "BASIC"
	FeeTransparencyDetailed      FeeTransparencyLevel = "DETAILED"
	FeeTransparencyComprehensive FeeTransparencyLevel = "COMPREHENSIVE"
)

type FeeTransparency struct {
	Level                   FeeTransparencyLevel `json:"level"`
	DisclosesWalletFees     bool                 `json:"disclosesWalletFees"`
	ShowsTransactionPurpose bool                 `json:"showsTransactionPurpose"`
	WithRef
}
