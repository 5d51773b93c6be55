package checkpoint

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/umapsgd"
	"github.com/hupe1980/umapsgd/blobstore"
	"github.com/hupe1980/umapsgd/codec"
	"github.com/hupe1980/umapsgd/resource"
)

// Name returns the blob name of the snapshot taken after epoch.
func Name(prefix string, epoch int) string {
	return join(prefix, fmt.Sprintf("epoch-%06d.emb", epoch))
}

// Options configures a Writer.
type Options struct {
	// Every saves after every Every-th epoch (epochs Every-1, 2*Every-1, ...).
	// Zero disables count-based saves.
	Every int

	// Interval saves at the first epoch and then whenever Interval has
	// elapsed since the last time-based save. Zero disables time-based saves.
	Interval time.Duration

	// NEpochs marks the final epoch (NEpochs-1) which is always saved.
	// Zero means unknown.
	NEpochs int

	// Keep retains only the newest Keep snapshots. Zero keeps all.
	Keep int

	// Compression applied to snapshot payloads.
	Compression Compression

	// BestEffort logs write failures instead of aborting the run.
	BestEffort bool

	// Codec encodes the manifest. Defaults to codec.Default.
	Codec codec.Codec

	Logger    *umapsgd.Logger
	Resources *resource.Controller
}

// DefaultOptions returns options that save every 50 epochs with zstd.
func DefaultOptions() Options {
	return Options{
		Every:       50,
		Compression: CompressionZSTD,
	}
}

// Writer saves embedding snapshots at epoch boundaries.
// It implements umapsgd.ProgressCallback.
type Writer struct {
	store  blobstore.Store
	prefix string
	opts   Options

	mu        sync.Mutex
	sometimes *rate.Sometimes
	manifest  *Manifest
}

var _ umapsgd.ProgressCallback = (*Writer)(nil)

// NewWriter creates a Writer that stores snapshots under prefix.
func NewWriter(store blobstore.Store, prefix string, optFns ...func(o *Options)) *Writer {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.Logger == nil {
		opts.Logger = umapsgd.NoopLogger()
	}

	w := &Writer{
		store:  store,
		prefix: prefix,
		opts:   opts,
	}
	if opts.Interval > 0 {
		w.sometimes = &rate.Sometimes{Interval: opts.Interval}
	}
	return w
}

// OnEpochEnd saves a snapshot when epoch is selected by the options.
func (w *Writer) OnEpochEnd(ctx context.Context, epoch int, emb *umapsgd.Embedding) error {
	if !w.due(epoch) {
		return nil
	}

	err := w.Save(ctx, epoch, emb)
	if err != nil && w.opts.BestEffort {
		return nil
	}
	return err
}

func (w *Writer) due(epoch int) bool {
	if w.opts.NEpochs > 0 && epoch == w.opts.NEpochs-1 {
		return true
	}
	if w.opts.Every > 0 && (epoch+1)%w.opts.Every == 0 {
		return true
	}
	if w.sometimes == nil {
		return false
	}
	due := false
	w.sometimes.Do(func() { due = true })
	return due
}

// Save unconditionally writes a snapshot of emb for epoch and updates the
// manifest.
func (w *Writer) Save(ctx context.Context, epoch int, emb *umapsgd.Embedding) error {
	name := Name(w.prefix, epoch)
	n, err := w.save(ctx, name, epoch, emb)
	w.opts.Logger.LogCheckpoint(ctx, name, n, err)
	return err
}

func (w *Writer) save(ctx context.Context, name string, epoch int, emb *umapsgd.Embedding) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := &Snapshot{
		Epoch:   epoch,
		NEpochs: w.opts.NEpochs,
		Rows:    emb.Len(),
		Dim:     emb.Dim(),
		Data:    emb.Data(),
	}
	data, err := Encode(snap, w.opts.Compression)
	if err != nil {
		return 0, fmt.Errorf("encode epoch %d: %w", epoch, err)
	}

	if err := w.opts.Resources.AcquireIO(ctx, len(data)); err != nil {
		return 0, err
	}
	if err := w.store.Put(ctx, name, data); err != nil {
		return 0, fmt.Errorf("put %s: %w", name, err)
	}

	if w.manifest == nil {
		m, err := loadOrNewManifest(ctx, w.store, w.prefix)
		if err != nil {
			return len(data), fmt.Errorf("load manifest: %w", err)
		}
		w.manifest = m
	}

	m := w.manifest
	m.Rows, m.Dim, m.NEpochs = snap.Rows, snap.Dim, snap.NEpochs
	entry := Entry{
		Epoch:       epoch,
		Name:        name,
		Bytes:       len(data),
		Compression: Compression(data[6]).String(),
		CRC32C:      crcOf(data),
		CreatedAt:   time.Now().UTC(),
	}
	m.Entries = upsert(m.Entries, entry)

	var stale []Entry
	if w.opts.Keep > 0 && len(m.Entries) > w.opts.Keep {
		cut := len(m.Entries) - w.opts.Keep
		stale = append(stale, m.Entries[:cut]...)
		m.Entries = append([]Entry(nil), m.Entries[cut:]...)
	}

	if err := saveManifest(ctx, w.store, w.prefix, w.opts.Codec, m); err != nil {
		return len(data), fmt.Errorf("save manifest: %w", err)
	}

	// Blobs are removed only after the manifest stops referencing them.
	for _, e := range stale {
		if err := w.store.Delete(ctx, e.Name); err != nil {
			w.opts.Logger.WarnContext(ctx, "failed to delete stale checkpoint", "name", e.Name, "error", err)
		}
	}
	return len(data), nil
}

// Manifest returns a copy of the in-memory manifest, or nil before the first
// save.
func (w *Writer) Manifest() *Manifest {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.manifest == nil {
		return nil
	}
	m := *w.manifest
	m.Entries = append([]Entry(nil), w.manifest.Entries...)
	return &m
}

// upsert replaces the entry with the same epoch or inserts e keeping
// entries sorted by epoch.
func upsert(entries []Entry, e Entry) []Entry {
	for i := range entries {
		if entries[i].Epoch == e.Epoch {
			entries[i] = e
			return entries
		}
	}
	entries = append(entries, e)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Epoch < entries[j].Epoch })
	return entries
}
