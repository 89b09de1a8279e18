package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/snapfs/snapfs/pkg/importer"
	"github.com/snapfs/snapfs/pkg/journal"
	"github.com/snapfs/snapfs/pkg/object"
	"github.com/snapfs/snapfs/pkg/status"
	"github.com/snapfs/snapfs/pkg/store"
)

// Config assembles a Checkout.
type Config struct {
	// Store is the shared byte-store holding blob-info records and
	// cached blob contents.
	Store store.ByteStore

	// Importer is the helper-backed importer. The Checkout serializes
	// access to it.
	Importer *importer.Importer

	// Journal is the change log assigning sequence numbers. A fresh
	// unbounded journal is created when nil.
	Journal *journal.Journal

	// CacheConfig bounds the status cache.
	CacheConfig status.CacheConfig

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Checkout binds one helper-backed importer, the byte-store, the
// journal, and the status cache into the object the daemon serves
// requests against.
type Checkout struct {
	blobs  *store.BlobInfoStore
	data   *store.BlobDataStore
	jrnl   *journal.Journal
	cache  *status.Cache
	logger *slog.Logger

	// The importer owns a synchronous channel: one request at a time.
	impMu sync.Mutex
	imp   *importer.Importer
}

// New creates a Checkout from cfg.
func New(cfg Config) *Checkout {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	jrnl := cfg.Journal
	if jrnl == nil {
		jrnl = journal.New(0)
	}
	return &Checkout{
		blobs:  store.NewBlobInfoStore(cfg.Store),
		data:   store.NewBlobDataStore(cfg.Store),
		jrnl:   jrnl,
		cache:  status.NewCache(cfg.CacheConfig),
		logger: logger,
		imp:    cfg.Importer,
	}
}

// Journal returns the checkout's change log.
func (c *Checkout) Journal() *journal.Journal {
	return c.jrnl
}

// ImportSnapshot imports the manifest for revName and returns the
// root tree identity.
func (c *Checkout) ImportSnapshot(ctx context.Context, revName string) (object.Hash, error) {
	c.impMu.Lock()
	defer c.impMu.Unlock()

	root, err := c.imp.ImportManifest(ctx, revName)
	if err != nil {
		return object.Hash{}, fmt.Errorf("import snapshot %q: %w", revName, err)
	}
	c.logger.Info("snapshot imported", "rev", revName, "root", root.String())
	return root, nil
}

// ReadBlob returns the contents for a blob identity, serving from the
// local store when possible and write-through caching helper fetches.
func (c *Checkout) ReadBlob(ctx context.Context, id object.Hash) ([]byte, error) {
	data, err := c.data.Get(ctx, id)
	if err == nil {
		return data, nil
	}

	c.impMu.Lock()
	data, err = c.imp.ImportFileContents(ctx, id)
	c.impMu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := c.data.Put(ctx, id, data); err != nil {
		// The fetch succeeded; a cache write failure only costs a
		// re-fetch later.
		c.logger.Warn("blob cache write failed", "blob", id.String(), "error", err)
	}
	return data, nil
}

// Status returns the working-copy status against commit as of the
// journal sequence seq. Concurrent identical requests coalesce onto
// one computation; compute runs only when this caller wins the
// registration.
func (c *Checkout) Status(ctx context.Context, commit object.Hash, seq uint64,
	compute func(context.Context) (status.Status, error)) (status.Status, error) {

	fut, promise := c.cache.Get(commit, seq)
	if fut != nil {
		return fut.Wait(ctx)
	}

	st, err := compute(ctx)
	if err != nil {
		// Abandon the registration; waiters holding futures chained
		// to this promise fail over to their contexts.
		c.cache.DropPromise(commit, seq)
		return status.Status{}, fmt.Errorf("status for %s at %d: %w", commit, seq, err)
	}

	promise.Fulfill(st)
	c.cache.Insert(commit, status.SeqStatusPair{Seq: seq, Status: st})
	return st, nil
}

// RecordChange appends a change record to the journal and returns the
// assigned sequence number.
func (c *Checkout) RecordChange(rec journal.ChangeRecord) uint64 {
	seq := c.jrnl.Append(rec)
	c.logger.Debug("change recorded", "seq", seq)
	return seq
}
