package checkpoint

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/umapsgd/blobstore"
)

// Load reads and verifies the snapshot stored as name.
func Load(ctx context.Context, store blobstore.Store, name string) (*Snapshot, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// List returns the snapshots stored under prefix, ordered by epoch.
// The manifest is used when present. Otherwise blob names are scanned.
func List(ctx context.Context, store blobstore.Store, prefix string) ([]Entry, error) {
	m, err := LoadManifest(ctx, store, prefix)
	switch {
	case err == nil:
		return m.Entries, nil
	case !errors.Is(err, blobstore.ErrNotFound):
		return nil, err
	}

	names, err := store.List(ctx, join(prefix, "epoch-"))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		epoch, ok := parseEpoch(name)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Epoch: epoch, Name: name})
	}
	return entries, nil
}

// Latest loads the snapshot with the highest epoch under prefix.
// It returns blobstore.ErrNotFound when there is none.
func Latest(ctx context.Context, store blobstore.Store, prefix string) (*Snapshot, error) {
	entries, err := List(ctx, store, prefix)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no checkpoints under %q: %w", prefix, blobstore.ErrNotFound)
	}

	m := Manifest{Entries: entries}
	e, _ := m.Latest()
	return Load(ctx, store, e.Name)
}

// parseEpoch extracts 123 from ".../epoch-000123.emb".
func parseEpoch(name string) (int, bool) {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name, ok := strings.CutPrefix(name, "epoch-")
	if !ok {
		return 0, false
	}
	name, ok = strings.CutSuffix(name, ".emb")
	if !ok {
		return 0, false
	}
	epoch, err := strconv.Atoi(name)
	if err != nil || epoch < 0 {
		return 0, false
	}
	return epoch, true
}

func crcOf(encoded []byte) uint32 {
	return binary.LittleEndian.Uint32(encoded[28:])
}
