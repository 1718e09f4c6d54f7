package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/knadh/koanf/providers/file"

	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/internal/domain/search"
	"github.com/okian/tsuri/pkg/logger"
	"github.com/okian/tsuri/pkg/metrics"
)

// CatalogStore publishes the catalog through an atomic pointer. Readers never
// lock; Reload swaps in a fully validated snapshot.
type CatalogStore struct {
	path    string
	initial *Catalog
	log     logger.Logger

	snapshot atomic.Pointer[Snapshot]
	version  atomic.Uint64

	// reload serializes writers; readers ignore it.
	reload sync.Mutex

	watchMu  sync.Mutex
	watcher  *file.File
	onReload []func(*Snapshot)
}

var _ Store = (*CatalogStore)(nil)

// NewCatalogStore loads the initial catalog: an explicit WithCatalog value,
// else the WithPath file, else the embedded default.
func NewCatalogStore(ctx context.Context, opts ...Option) (*CatalogStore, error) {
	s := &CatalogStore{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	if s.initial != nil {
		if err := s.Reload(ctx, *s.initial); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.ReloadSource(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// OnReload registers fn to run after every published snapshot.
func (s *CatalogStore) OnReload(fn func(*Snapshot)) {
	s.reload.Lock()
	defer s.reload.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Reload validates c and publishes it as the new snapshot. On error the
// current snapshot stays in place.
func (s *CatalogStore) Reload(ctx context.Context, c Catalog) error {
	start := time.Now()
	if err := Validate(&c); err != nil {
		metrics.RecordCatalogLoad(false, 0)
		metrics.RecordErrorByComponent("repository", "invalid_catalog")
		s.log.Error(ctx, "catalog rejected", logger.Error(err))
		return err
	}
	s.publish(ctx, c, start)
	return nil
}

// ReloadSource re-reads the configured file, or the embedded catalog when no
// path is set.
func (s *CatalogStore) ReloadSource(ctx context.Context) error {
	start := time.Now()
	var (
		c   Catalog
		err error
	)
	if s.path != "" {
		c, err = LoadCatalogFile(s.path)
	} else {
		c, err = DefaultCatalog()
	}
	if err != nil {
		metrics.RecordCatalogLoad(false, 0)
		metrics.RecordErrorByComponent("repository", "load_catalog")
		s.log.Error(ctx, "catalog load failed", logger.String("path", s.path), logger.Error(err))
		return err
	}
	s.publish(ctx, c, start)
	return nil
}

func (s *CatalogStore) publish(ctx context.Context, c Catalog, start time.Time) {
	s.reload.Lock()
	defer s.reload.Unlock()

	snap := &Snapshot{
		Catalog:  c,
		Version:  s.version.Add(1),
		LoadedAt: time.Now(),
	}
	s.snapshot.Store(snap)

	counts := c.Counts()
	metrics.UpdateCatalogItems("spots", counts.Spots)
	metrics.UpdateCatalogItems("fish", counts.Fish)
	metrics.UpdateCatalogItems("guides", counts.Guides)
	metrics.UpdateCatalogItems("articles", counts.Articles)
	metrics.UpdateCatalogItems("tools", counts.Tools)
	took := time.Since(start)
	metrics.RecordCatalogLoad(true, float64(took.Microseconds())/1000)

	s.log.Info(ctx, "catalog published",
		logger.Int("version", int(snap.Version)),
		logger.Int("spots", counts.Spots),
		logger.Int("fish", counts.Fish),
		logger.Duration("took", took),
	)

	for _, fn := range s.onReload {
		fn(snap)
	}
}

// Watch reloads the catalog file whenever it changes, until ctx is done or
// Close is called. It is a no-op for the embedded catalog.
func (s *CatalogStore) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		return nil
	}

	fp := file.Provider(s.path)
	err := fp.Watch(func(_ interface{}, err error) {
		if err != nil {
			s.log.Warn(ctx, "catalog watch error", logger.Error(err))
			return
		}
		// A rejected file keeps the previous snapshot.
		_ = s.ReloadSource(ctx)
	})
	if err != nil {
		return err
	}
	s.watcher = fp

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return nil
}

// Close stops watching the catalog file.
func (s *CatalogStore) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Unwatch()
	s.watcher = nil
	return err
}

// Snapshot returns the current snapshot.
func (s *CatalogStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Spots implements Store.
func (s *CatalogStore) Spots(_ context.Context) ([]model.Spot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.Catalog.Spots, nil
}

// Corpus implements Store.
func (s *CatalogStore) Corpus(_ context.Context) (search.Sources, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return search.Sources{}, ErrNotLoaded
	}
	return snap.Catalog.Sources(), nil
}

// Counts implements Store.
func (s *CatalogStore) Counts(_ context.Context) Counts {
	snap := s.snapshot.Load()
	if snap == nil {
		return Counts{}
	}
	return snap.Catalog.Counts()
}
