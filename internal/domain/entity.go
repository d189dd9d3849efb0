package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EntityType holds the role flags of an organization.
type EntityType struct {
	ChainDataProvider            bool `json:"chainDataProvider"`
	Corporate                    bool `json:"corporate"`
	DataBroker                   bool `json:"dataBroker"`
	Exchange                     bool `json:"exchange"`
	OffchainDataProvider         bool `json:"offchainDataProvider"`
	SecurityAuditor              bool `json:"securityAuditor"`
	TransactionBroadcastProvider bool `json:"transactionBroadcastProvider"`
	WalletDeveloper              bool `json:"walletDeveloper"`
}

// Roles lists the names of the flags that are set, in declaration order.
func (t EntityType) Roles() []string {
	var out []string
	add := func(on bool, name string) {
		if on {
			out = append(out, name)
		}
	}
	add(t.ChainDataProvider, "chainDataProvider")
	add(t.Corporate, "corporate")
	add(t.DataBroker, "dataBroker")
	add(t.Exchange, "exchange")
	add(t.OffchainDataProvider, "offchainDataProvider")
	add(t.SecurityAuditor, "securityAuditor")
	add(t.TransactionBroadcastProvider, "transactionBroadcastProvider")
	add(t.WalletDeveloper, "walletDeveloper")
	return out
}

type LegalName struct {
	Name            string `json:"name"`
	SoundsDifferent bool   `json:"soundsDifferent"`
}

// Link is a profile link that is either present or explicitly marked absent
// (for example {"type": "NO_LINKEDIN_URL"}).
type Link struct {
	URL    string
	Absent string
}

func (l Link) Present() bool { return l.URL != "" }

func (l *Link) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = Link{}
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*l = Link{URL: strings.TrimSpace(s)}
		return nil
	}
	var marker struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(trimmed, &marker); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	*l = Link{Absent: marker.Type}
	return nil
}

func (l Link) MarshalJSON() ([]byte, error) {
	if l.URL != "" {
		return json.Marshal(l.URL)
	}
	if l.Absent != "" {
		return json.Marshal(map[string]string{"type": l.Absent})
	}
	return []byte("null"), nil
}

// Icon is "NO_ICON" or {"extension": "svg"}.
type Icon struct {
	Extension string
}

func (i *Icon) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Icon{}
		return nil
	}
	var obj struct {
		Extension string `json:"extension"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("icon: %w", err)
	}
	*i = Icon{Extension: obj.Extension}
	return nil
}

func (i Icon) MarshalJSON() ([]byte, error) {
	if i.Extension == "" {
		return json.Marshal("NO_ICON")
	}
	return json.Marshal(map[string]string{"extension": i.Extension})
}

// Entity is an organization referenced by wallets (developer, exchange, auditor, data processor).
type Entity struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	LegalName     LegalName  `json:"legalName"`
	Type          EntityType `json:"type"`
	Icon          Icon       `json:"icon"`
	Jurisdiction  string     `json:"jurisdiction,omitempty"`
	URL           Link       `json:"url"`
	RepoURL       Link       `json:"repoUrl"`
	PrivacyPolicy Link       `json:"privacyPolicy"`
	Crunchbase    Link       `json:"crunchbase"`
	LinkedIn      Link       `json:"linkedin"`
	Twitter       Link       `json:"twitter"`
	Farcaster     Link       `json:"farcaster"`
}

// EntityRef points at an entity by id. Authored documents give the id; the catalog
// loader links Entity. Stored snapshots embed the full entity.
type EntityRef struct {
	ID     string
	Entity *Entity
}

// Name is the linked entity's display name, or fallback when unlinked.
func (r EntityRef) Name(fallback string) string {
	if r.Entity != nil && r.Entity.Name != "" {
		return r.Entity.Name
	}
	return fallback
}

func (r *EntityRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = EntityRef{ID: strings.TrimSpace(id)}
		return nil
	}
	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("entity reference: %w", err)
	}
	*r = EntityRef{ID: e.ID, Entity: &e}
	return nil
}

func (r EntityRef) MarshalJSON() ([]byte, error) {
	if r.Entity != nil {
		return json.Marshal(r.Entity)
	}
	return json.Marshal(r.ID)
}
