// Package checkpoint saves and restores embedding snapshots taken between
// optimization epochs.
//
// A Writer is a umapsgd.ProgressCallback. At selected epoch boundaries it
// encodes the embedding, compresses the payload (none, LZ4 or ZSTD), stamps a
// CRC32C and writes
//
//	<prefix>/epoch-000123.emb
//	<prefix>/manifest.json
//
// through a blobstore.Store. Load, List and Latest read them back; corrupted
// blobs fail with ErrCorrupt.
//
//	w := checkpoint.NewWriter(store, "runs/mnist", func(o *checkpoint.Options) {
//	    o.Every = 25
//	    o.NEpochs = params.NEpochs
//	})
//	params.Callback = w
package checkpoint
