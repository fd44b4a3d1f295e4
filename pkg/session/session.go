// Package session provides session identity and the append-only action log
// that records every dispatched request.
//
// A session is nothing more than an opaque correlation token attached to log
// entries and responses; there is no session object to create or destroy.
package session

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateID returns provided verbatim when non-empty. Otherwise it returns
// a fresh 16-character hexadecimal token drawn from crypto/rand.
func GenerateID(provided string) string {
	if provided != "" {
		return provided
	}
	var b [8]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
