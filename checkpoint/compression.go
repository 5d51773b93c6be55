package checkpoint

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how snapshot payloads are compressed.
type Compression uint8

const (
	// CompressionNone stores raw little-endian float32 rows.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxRawSize))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compress returns the compressed payload and the compression actually used.
// Payloads that do not shrink below 90% of their size are stored raw.
func compress(data []byte, c Compression) ([]byte, Compression, error) {
	if c == CompressionNone || len(data) == 0 {
		return data, CompressionNone, nil
	}

	var out []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		out = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		out = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, 0, fmt.Errorf("unknown compression %d", c)
	}

	if len(out) == 0 || float64(len(out)) > float64(len(data))*0.9 {
		return data, CompressionNone, nil
	}
	return out, c, nil
}

// decompress expands payload into exactly rawSize bytes.
func decompress(payload []byte, c Compression, rawSize int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(payload) != rawSize {
			return nil, errors.New("raw payload size mismatch")
		}
		return payload, nil

	case CompressionLZ4:
		result := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, err
		}
		if n != rawSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, err
		}
		if len(decoded) != rawSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}
