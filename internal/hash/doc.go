// Package hash provides the CRC32-Castagnoli (CRC32C) checksum used to
// protect checkpoint payloads and blob uploads.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
