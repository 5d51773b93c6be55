package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/hupe1980/umapsgd"
	"github.com/hupe1980/umapsgd/internal/conv"
	"github.com/hupe1980/umapsgd/internal/hash"
)

// ErrCorrupt is returned when a snapshot fails structural or checksum
// validation.
var ErrCorrupt = errors.New("corrupt checkpoint")

const (
	formatVersion = 1
	headerSize    = 32

	// maxRawSize bounds the decoded payload to what a raw payload length
	// field can describe.
	maxRawSize = math.MaxUint32

	// lz4MaxRatio is the largest expansion an LZ4 block can encode.
	lz4MaxRatio = 255
)

var magic = [4]byte{'U', 'S', 'G', 'D'}

// Snapshot is an embedding captured at an epoch boundary.
type Snapshot struct {
	Epoch   int       // 0-based epoch that had just finished
	NEpochs int       // Total epochs of the run
	Rows    int       // Number of vertices
	Dim     int       // Components per vertex
	Data    []float32 // Row-major Rows x Dim
}

// Embedding wraps the snapshot data as an embedding without copying.
func (s *Snapshot) Embedding() (*umapsgd.Embedding, error) {
	return umapsgd.NewEmbeddingFrom(s.Data, s.Dim)
}

// Encode serializes s.
//
// Layout (little endian):
//
//	[0:4]   magic "USGD"
//	[4:6]   format version
//	[6]     compression
//	[7]     reserved
//	[8:12]  epoch
//	[12:16] total epochs
//	[16:20] rows
//	[20:24] dim
//	[24:28] payload length
//	[28:32] CRC32C of payload
//	[32:]   payload (float32 rows, possibly compressed)
func Encode(s *Snapshot, c Compression) ([]byte, error) {
	if s.Rows*s.Dim != len(s.Data) {
		return nil, fmt.Errorf("snapshot shape %dx%d does not match %d values", s.Rows, s.Dim, len(s.Data))
	}

	raw := make([]byte, 4*len(s.Data))
	for i, v := range s.Data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}

	payload, used, err := compress(raw, c)
	if err != nil {
		return nil, err
	}

	fields, err := conv.Uint32s(
		[]string{"epoch", "n_epochs", "rows", "dim", "payload"},
		s.Epoch, s.NEpochs, s.Rows, s.Dim, len(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}

	out := make([]byte, headerSize+len(payload))
	copy(out[0:4], magic[:])
	binary.LittleEndian.PutUint16(out[4:], formatVersion)
	out[6] = byte(used)
	for i, v := range fields {
		binary.LittleEndian.PutUint32(out[8+4*i:], v)
	}
	binary.LittleEndian.PutUint32(out[28:], hash.CRC32C(payload))
	copy(out[headerSize:], payload)
	return out, nil
}

// Decode parses and verifies an encoded snapshot.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}
	if [4]byte(data[0:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[0:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}

	c := Compression(data[6])
	s := &Snapshot{
		Epoch:   int(binary.LittleEndian.Uint32(data[8:])),
		NEpochs: int(binary.LittleEndian.Uint32(data[12:])),
		Rows:    int(binary.LittleEndian.Uint32(data[16:])),
		Dim:     int(binary.LittleEndian.Uint32(data[20:])),
	}
	payloadLen := int(binary.LittleEndian.Uint32(data[24:]))
	sum := binary.LittleEndian.Uint32(data[28:])

	payload := data[headerSize:]
	if len(payload) != payloadLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(payload), payloadLen)
	}
	if !hash.Verify(payload, sum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	rawSize, err := rawSizeOf(s.Rows, s.Dim, c, payloadLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	raw, err := decompress(payload, c, rawSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	s.Data = make([]float32, s.Rows*s.Dim)
	for i := range s.Data {
		s.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return s, nil
}

// rawSizeOf returns the decoded payload size of a rows x dim snapshot and
// rejects shapes the stored payload cannot hold.
func rawSizeOf(rows, dim int, c Compression, payloadLen int) (int, error) {
	hi, n := bits.Mul64(uint64(rows), uint64(dim))
	hi2, size := bits.Mul64(n, 4)
	if hi != 0 || hi2 != 0 || size > maxRawSize {
		return 0, fmt.Errorf("shape %dx%d exceeds %d bytes", rows, dim, uint64(maxRawSize))
	}

	switch c {
	case CompressionNone:
		if size != uint64(payloadLen) {
			return 0, fmt.Errorf("shape %dx%d needs %d bytes, payload has %d", rows, dim, size, payloadLen)
		}
	case CompressionLZ4:
		if size > lz4MaxRatio*uint64(payloadLen) {
			return 0, fmt.Errorf("shape %dx%d cannot come from %d lz4 bytes", rows, dim, payloadLen)
		}
	}
	return int(size), nil
}
