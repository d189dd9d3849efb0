package importrunner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"walletcat/internal/catalog"
	"walletcat/internal/domain"
	"walletcat/internal/logging"
	"walletcat/internal/ports"
	"walletcat/internal/telemetry"
)

var (
	// ErrBadSource is returned for import sources that are outside the import root or are
	// not an existing directory.
	ErrBadSource = errString("import source must be a directory inside the import root")
	// ErrEmptyCatalog is returned when a source holds no wallets and AllowEmpty is off.
	ErrEmptyCatalog = errString("import source holds no wallets")

	errRequeued = errString("import requeued after cancellation")
)

// Imports running longer than this belong to a worker that is gone.
const staleAfter = 10 * time.Minute

type errString string

func (e errString) Error() string { return string(e) }

// ImportProcessor performs the work of one claimed import.
type ImportProcessor interface {
	Process(ctx context.Context, imp domain.CatalogImport) (domain.ImportResult, error)
}

// CatalogImporter loads a data directory under Root and replaces the stored snapshot with it.
type CatalogImporter struct {
	Root  string
	Store ports.SnapshotWriter
	Log   *zap.SugaredLogger
	// AllowEmpty lets a source without wallets clear the stored catalog.
	AllowEmpty bool
	// OnComplete runs after a snapshot was replaced, e.g. to drop cached views.
	OnComplete func()
}

// SourceDir resolves an import source against the root and checks that it is a directory.
// Empty means the root itself.
func (c CatalogImporter) SourceDir(source string) (string, error) {
	dir := c.Root
	if source != "" {
		if !filepath.IsLocal(source) {
			return "", fmt.Errorf("%w: %q", ErrBadSource, source)
		}
		dir = filepath.Join(c.Root, source)
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q does not exist", ErrBadSource, source)
		}
		return "", fmt.Errorf("import source %q: %w", source, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %q is not a directory", ErrBadSource, source)
	}
	return dir, nil
}

func (c CatalogImporter) Process(ctx context.Context, imp domain.CatalogImport) (domain.ImportResult, error) {
	var res domain.ImportResult
	dir, err := c.SourceDir(imp.Source)
	if err != nil {
		return res, err
	}
	snap, issues, err := catalog.NewLoader(dir, c.Log).Load(ctx)
	if err != nil {
		return res, err
	}
	if errs := issues.Errors(); len(errs) > 0 {
		return res, fmt.Errorf("%w: %s", catalog.ErrInvalid, errs.Summary(3))
	}
	if len(snap.Wallets) == 0 && !c.AllowEmpty {
		return res, fmt.Errorf("%w: %q", ErrEmptyCatalog, imp.Source)
	}
	if err := c.Store.ReplaceSnapshot(ctx, snap.Wallets, snap.Entities); err != nil {
		return res, fmt.Errorf("replace snapshot: %w", err)
	}
	if c.OnComplete != nil {
		c.OnComplete()
	}
	res.Wallets = len(snap.Wallets)
	res.Entities = len(snap.Entities)
	for _, is := range issues {
		res.Warnings = append(res.Warnings, is.String())
	}
	return res, nil
}

// Run claims queued imports and processes them with concurrency workers until ctx is done.
// Imports left running by a dead worker are queued again first; imports claimed but not
// finished when ctx ends go back to the queue. It returns once every worker has exited.
func Run(ctx context.Context, repo ports.ImportRepository, processor ImportProcessor, concurrency int, pollInterval time.Duration, log *zap.SugaredLogger) {
	if concurrency < 1 {
		return
	}
	log = logging.OrNop(log)
	if n, err := repo.RequeueStale(ctx, staleAfter); err != nil {
		log.Warnw("stale import recovery failed", "error", err)
	} else if n > 0 {
		log.Infow("requeued stale imports", "count", n)
	}
	importsCh := make(chan domain.CatalogImport, concurrency)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(importsCh)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for ctx.Err() == nil {
					imp, found, err := repo.ClaimNext(ctx)
					if err != nil {
						if ctx.Err() == nil {
							log.Warnw("import claim failed", "error", err)
						}
						break
					}
					if !found {
						break
					}
					select {
					case importsCh <- imp:
					case <-ctx.Done():
						if err := requeue(ctx, repo, imp.ID); !errors.Is(err, errRequeued) {
							log.Warnw("import requeue failed", "import", imp.ID, "error", err)
						}
						return
					}
				}
			}
		}
	}()

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for imp := range importsCh {
				err := complete(ctx, repo, processor, imp)
				if errors.Is(err, errRequeued) {
					log.Infow("import requeued", "worker", idx, "import", imp.ID)
					continue
				}
				if err != nil {
					log.Errorw("import failed", "worker", idx, "import", imp.ID, "error", err)
					continue
				}
				log.Infow("import completed", "worker", idx, "import", imp.ID, "source", imp.Source)
			}
		}(i)
	}
	wg.Wait()
}

// ProcessInline starts and processes a specific queued import synchronously using the same
// processor as the background workers, and returns its final record. A failed import is
// reported through the record's status, not the error. When ctx ends first the import is
// queued again and returned with status queued.
func ProcessInline(ctx context.Context, repo ports.ImportRepository, processor ImportProcessor, importID string) (domain.CatalogImport, error) {
	if err := repo.StartImport(ctx, importID); err != nil {
		return domain.CatalogImport{}, err
	}
	imp, err := repo.Get(ctx, importID)
	if err != nil {
		return imp, err
	}
	procErr := complete(ctx, repo, processor, imp)
	final, err := repo.Get(context.WithoutCancel(ctx), importID)
	if err != nil {
		return imp, err
	}
	if procErr != nil && !errors.Is(procErr, errRequeued) && final.Status != domain.ImportFailed {
		return final, procErr
	}
	return final, nil
}

func complete(ctx context.Context, repo ports.ImportRepository, processor ImportProcessor, imp domain.CatalogImport) error {
	if ctx.Err() != nil {
		return requeue(ctx, repo, imp.ID)
	}
	res, err := processor.Process(ctx, imp)
	if err != nil && ctx.Err() != nil {
		return requeue(ctx, repo, imp.ID)
	}
	if err != nil {
		telemetry.Imports.WithLabelValues(string(domain.ImportFailed)).Inc()
		if mErr := repo.MarkFailed(context.WithoutCancel(ctx), imp.ID, err.Error()); mErr != nil {
			return fmt.Errorf("%w (mark failed: %v)", err, mErr)
		}
		return err
	}
	telemetry.Imports.WithLabelValues(string(domain.ImportCompleted)).Inc()
	return repo.MarkCompleted(context.WithoutCancel(ctx), imp.ID, res)
}

func requeue(ctx context.Context, repo ports.ImportRepository, importID string) error {
	if err := repo.Requeue(context.WithoutCancel(ctx), importID); err != nil {
		return fmt.Errorf("requeue import %s: %w", importID, err)
	}
	return errRequeued
}
