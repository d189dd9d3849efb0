package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"walletcat/internal/domain"
	"walletcat/internal/logging"
)

const (
	EntitiesDir   = "entities"
	WalletsDir    = "wallets"
	FallbacksFile = "fallbacks.yaml"
)

// Snapshot is one fully loaded, linked catalog. Values are shared and must not be mutated.
type Snapshot struct {
	Wallets  []*domain.Wallet
	Entities []*domain.Entity
	LoadedAt time.Time
}

// NewSnapshot sorts the given documents by id and links entity references.
func NewSnapshot(wallets []*domain.Wallet, entities []*domain.Entity) (*Snapshot, Issues) {
	snap := &Snapshot{
		Wallets:  append([]*domain.Wallet(nil), wallets...),
		Entities: append([]*domain.Entity(nil), entities...),
		LoadedAt: time.Now().UTC(),
	}
	sort.Slice(snap.Wallets, func(i, j int) bool { return snap.Wallets[i].ID() < snap.Wallets[j].ID() })
	sort.Slice(snap.Entities, func(i, j int) bool { return snap.Entities[i].ID < snap.Entities[j].ID })
	return snap, Link(snap)
}

// Wallet finds a wallet by id.
func (s *Snapshot) Wallet(id string) (*domain.Wallet, bool) {
	i := sort.Search(len(s.Wallets), func(i int) bool { return s.Wallets[i].ID() >= id })
	if i < len(s.Wallets) && s.Wallets[i].ID() == id {
		return s.Wallets[i], true
	}
	return nil, false
}

// Entity finds an entity by id.
func (s *Snapshot) Entity(id string) (*domain.Entity, bool) {
	i := sort.Search(len(s.Entities), func(i int) bool { return s.Entities[i].ID >= id })
	if i < len(s.Entities) && s.Entities[i].ID == id {
		return s.Entities[i], true
	}
	return nil, false
}

// Loader reads a data directory holding entities/ and wallets/ documents in YAML or JSON.
type Loader struct {
	Dir         string
	Log         *zap.SugaredLogger
	Parallelism int
}

func NewLoader(dir string, log *zap.SugaredLogger) *Loader {
	return &Loader{Dir: dir, Log: logging.OrNop(log), Parallelism: 8}
}

// Load reads, decodes, links and validates every document. The error is reserved for I/O
// failures; problems with the data itself are returned as issues.
func (l *Loader) Load(ctx context.Context) (*Snapshot, Issues, error) {
	entityFiles, err := listDocuments(filepath.Join(l.Dir, EntitiesDir))
	if err != nil {
		return nil, nil, err
	}
	walletFiles, err := listDocuments(filepath.Join(l.Dir, WalletsDir))
	if err != nil {
		return nil, nil, err
	}

	entities := make([]*domain.Entity, len(entityFiles))
	wallets := make([]*domain.Wallet, len(walletFiles))
	decodeIssues := make([]*Issue, len(entityFiles)+len(walletFiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Parallelism, 1))
	for i, path := range entityFiles {
		g.Go(func() error {
			var e domain.Entity
			issue, err := decodeFile(gctx, path, &e)
			if err != nil {
				return err
			}
			if issue != nil {
				decodeIssues[i] = issue
				return nil
			}
			if e.ID == "" {
				e.ID = baseID(path)
			}
			entities[i] = &e
			return nil
		})
	}
	for i, path := range walletFiles {
		g.Go(func() error {
			var w domain.Wallet
			issue, err := decodeFile(gctx, path, &w)
			if err != nil {
				return err
			}
			if issue != nil {
				decodeIssues[len(entityFiles)+i] = issue
				return nil
			}
			if w.Metadata.ID == "" {
				w.Metadata.ID = baseID(path)
			}
			wallets[i] = &w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var issues Issues
	for _, is := range decodeIssues {
		if is != nil {
			issues = append(issues, *is)
		}
	}

	snap := &Snapshot{LoadedAt: time.Now().UTC()}
	snap.Entities, issues = dedupeEntities(entities, entityFiles, issues)
	snap.Wallets, issues = dedupeWallets(wallets, walletFiles, issues)
	issues = append(issues, Link(snap)...)
	for _, w := range snap.Wallets {
		issues = append(issues, ValidateWallet(w)...)
	}

	l.Log.Infow("catalog loaded",
		"dir", l.Dir,
		"wallets", len(snap.Wallets),
		"entities", len(snap.Entities),
		"errors", len(issues.Errors()),
		"warnings", len(issues)-len(issues.Errors()),
	)
	return snap, issues, nil
}

func dedupeEntities(in []*domain.Entity, files []string, issues Issues) ([]*domain.Entity, Issues) {
	seen := make(map[string]string, len(in))
	out := make([]*domain.Entity, 0, len(in))
	for i, e := range in {
		if e == nil {
			continue
		}
		if first, dup := seen[e.ID]; dup {
			issues = append(issues, Issue{Severity: SeverityError, File: files[i], Subject: e.ID,
				Message: fmt.Sprintf("duplicate entity id, first defined in %s", first)})
			continue
		}
		seen[e.ID] = files[i]
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, issues
}

func dedupeWallets(in []*domain.Wallet, files []string, issues Issues) ([]*domain.Wallet, Issues) {
	seen := make(map[string]string, len(in))
	out := make([]*domain.Wallet, 0, len(in))
	for i, w := range in {
		if w == nil {
			continue
		}
		if first, dup := seen[w.ID()]; dup {
			issues = append(issues, Issue{Severity: SeverityError, File: files[i], Subject: w.ID(),
				Message: fmt.Sprintf("duplicate wallet id, first defined in %s", first)})
			continue
		}
		seen[w.ID()] = files[i]
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, issues
}

// Link points every entity reference in the snapshot's wallets at the snapshot's entities.
func Link(snap *Snapshot) Issues {
	var issues Issues
	for _, w := range snap.Wallets {
		for _, ref := range w.Features.EntityRefs() {
			e, ok := snap.Entity(ref.ID)
			if !ok {
				issues = append(issues, Issue{Severity: SeverityError, Subject: w.ID(),
					Message: fmt.Sprintf("unknown entity %q", ref.ID)})
				continue
			}
			ref.Entity = e
		}
	}
	return issues
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsDocument(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// IsDocument reports whether name has an extension the loader reads.
func IsDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func baseID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func decodeFile(ctx context.Context, path string, into any) (*Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := Decode(path, data, into); err != nil {
		return &Issue{Severity: SeverityError, File: path, Message: err.Error()}, nil
	}
	return nil, nil
}

// Decode decodes a YAML or JSON document (chosen by extension) into a domain value.
// YAML goes through the same JSON decoders so both formats normalize identically.
func Decode(path string, data []byte, into any) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return json.Unmarshal(data, into)
	}
	js, err := YAMLToJSON(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(js, into)
}

// YAMLToJSON converts one YAML document to JSON.
func YAMLToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(jsonable(v))
}

// jsonable rewrites YAML-decoded values into types encoding/json accepts.
func jsonable(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonable(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonable(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonable(val)
		}
		return out
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
