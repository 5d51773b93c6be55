package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// RFC 3720 B.4 check value.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))
	assert.True(t, Verify([]byte("123456789"), 0xe3069283))
	assert.False(t, Verify([]byte("123456780"), 0xe3069283))
}

func TestNewCRC32C_Streaming(t *testing.T) {
	h := NewCRC32C()
	_, _ = h.Write([]byte("12345"))
	_, _ = h.Write([]byte("6789"))

	assert.Equal(t, CRC32C([]byte("123456789")), h.Sum32())
}
