// Package util provides content-digest helpers shared by the cache and the
// HTTP layer.
package util

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Blake3Hash returns the BLAKE3-256 digest of data.
func Blake3Hash(data []byte) []byte {
	sum := blake3.Sum256(data)
	return sum[:]
}

// Blake3HashHex returns the BLAKE3-256 digest of data as a hex string.
func Blake3HashHex(data []byte) string {
	return hex.EncodeToString(Blake3Hash(data))
}
