package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Leak grades whether user data reaches a third party. Ordered: Never < OptIn < Always.
type Leak int

const (
	LeakNever Leak = iota
	LeakOptIn
	LeakAlways
)

func ParseLeak(s string) (Leak, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NEVER", "":
		return LeakNever, nil
	case "OPT_IN":
		return LeakOptIn, nil
	case "ALWAYS":
		return LeakAlways, nil
	}
	return LeakNever, fmt.Errorf("unknown leak level %q", s)
}

func (l Leak) String() string {
	switch l {
	case LeakOptIn:
		return "OPT_IN"
	case LeakAlways:
		return "ALWAYS"
	}
	return "NEVER"
}

// AtLeast reports whether l is min or worse.
func (l Leak) AtLeast(min Leak) bool { return l >= min }

func (l Leak) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

func (l *Leak) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err2 := json.Unmarshal(data, &n); err2 != nil || n < int(LeakNever) || n > int(LeakAlways) {
			return fmt.Errorf("leak: %w", err)
		}
		*l = Leak(n)
		return nil
	}
	v, err := ParseLeak(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// LeakField names a piece of user data that an entity may learn.
type LeakField string

const (
	LeakIPAddress           LeakField = "ipAddress"
	LeakWalletAddress       LeakField = "walletAddress"
	LeakMempoolTransactions LeakField = "mempoolTransactions"
	LeakCexAccount          LeakField = "cexAccount"
	LeakPseudonym           LeakField = "pseudonym"
	LeakFarcasterAccount    LeakField = "farcasterAccount"
	LeakEmail               LeakField = "email"
	LeakPhoneNumber         LeakField = "phoneNumber"
)

var LeakFields = []LeakField{
	LeakIPAddress, LeakWalletAddress, LeakMempoolTransactions, LeakCexAccount,
	LeakPseudonym, LeakFarcasterAccount, LeakEmail, LeakPhoneNumber,
}

func ParseLeakField(s string) (LeakField, error) {
	for _, f := range LeakFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown leak field %q", s)
}

// MultiAddressPolicy describes what an entity learns about a user's other addresses.
type MultiAddressPolicy string

const (
	MultiAddressActiveOnly    MultiAddressPolicy = "ACTIVE_ADDRESS_ONLY"
	MultiAddressSingleRequest MultiAddressPolicy = "SINGLE_REQUEST"
	MultiAddressSeparateIPs   MultiAddressPolicy = "SEPARATE_REQUESTS_WITH_SEPARATE_IPS"
	MultiAddressSameIP        MultiAddressPolicy = "SEPARATE_REQUESTS_SAME_IP"
)

type MultiAddressHandling struct {
	Type MultiAddressPolicy `json:"type"`
}

// Leaks is what one entity learns. Absent fields are LeakNever.
type Leaks struct {
	IPAddress           Leak                  `json:"ipAddress,omitempty"`
	WalletAddress       Leak                  `json:"walletAddress,omitempty"`
	MempoolTransactions Leak                  `json:"mempoolTransactions,omitempty"`
	CexAccount          Leak                  `json:"cexAccount,omitempty"`
	Pseudonym           Leak                  `json:"pseudonym,omitempty"`
	FarcasterAccount    Leak                  `json:"farcasterAccount,omitempty"`
	Email               Leak                  `json:"email,omitempty"`
	PhoneNumber         Leak                  `json:"phoneNumber,omitempty"`
	MultiAddress        *MultiAddressHandling `json:"multiAddress,omitempty"`
	WithRef
}

// Level returns the leak level for field.
func (l Leaks) Level(field LeakField) Leak {
	switch field {
	case LeakIPAddress:
		return l.IPAddress
	case LeakWalletAddress:
		return l.WalletAddress
	case LeakMempoolTransactions:
		return l.MempoolTransactions
	case LeakCexAccount:
		return l.CexAccount
	case LeakPseudonym:
		return l.Pseudonym
	case LeakFarcasterAccount:
		return l.FarcasterAccount
	case LeakEmail:
		return l.Email
	case LeakPhoneNumber:
		return l.PhoneNumber
	}
	return LeakNever
}
