// Package idhash computes deterministic identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeEntryID computes a deterministic feed-history entry ID.
// Formula: SHA256(token_id|action|signature|index)
// Returns hex-encoded hash (64 characters). Replaying the same persist
// produces the same ID, so duplicated audit rows collapse.
func ComputeEntryID(tokenID int64, action string, signature string, index int) string {
	data := fmt.Sprintf("%d|%s|%s|%d", tokenID, action, signature, index)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
