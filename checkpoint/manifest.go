package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/umapsgd/blobstore"
	"github.com/hupe1980/umapsgd/codec"
)

// ManifestName is the blob name of the manifest below a checkpoint prefix.
const ManifestName = "manifest.json"

// Manifest lists the checkpoints written under one prefix.
type Manifest struct {
	Version int     `json:"version"`
	Codec   string  `json:"codec"`
	Rows    int     `json:"rows"`
	Dim     int     `json:"dim"`
	NEpochs int     `json:"n_epochs"`
	Entries []Entry `json:"entries"`
}

// Entry describes one stored snapshot.
type Entry struct {
	Epoch       int       `json:"epoch"`
	Name        string    `json:"name"`
	Bytes       int       `json:"bytes"`
	Compression string    `json:"compression"`
	CRC32C      uint32    `json:"crc32c"`
	CreatedAt   time.Time `json:"created_at"`
}

// Latest returns the entry with the highest epoch.
func (m *Manifest) Latest() (Entry, bool) {
	if len(m.Entries) == 0 {
		return Entry{}, false
	}
	latest := m.Entries[0]
	for _, e := range m.Entries[1:] {
		if e.Epoch > latest.Epoch {
			latest = e
		}
	}
	return latest, true
}

func manifestPath(prefix string) string {
	return join(prefix, ManifestName)
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func saveManifest(ctx context.Context, store blobstore.Store, prefix string, c codec.Codec, m *Manifest) error {
	m.Version = formatVersion
	m.Codec = c.Name()
	data, err := c.Marshal(m)
	if err != nil {
		return err
	}
	return store.Put(ctx, manifestPath(prefix), data)
}

// LoadManifest reads the manifest under prefix.
func LoadManifest(ctx context.Context, store blobstore.Store, prefix string) (*Manifest, error) {
	data, err := store.Get(ctx, manifestPath(prefix))
	if err != nil {
		return nil, err
	}

	// Both built-in codecs write plain JSON.
	var m Manifest
	if err := codec.Default.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrCorrupt, err)
	}
	if _, ok := codec.ByName(m.Codec); !ok {
		return nil, fmt.Errorf("%w: manifest codec %q", ErrCorrupt, m.Codec)
	}
	return &m, nil
}

func loadOrNewManifest(ctx context.Context, store blobstore.Store, prefix string) (*Manifest, error) {
	m, err := LoadManifest(ctx, store, prefix)
	if errors.Is(err, blobstore.ErrNotFound) {
		return &Manifest{}, nil
	}
	return m, err
}
