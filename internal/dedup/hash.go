// Package dedup computes the content hash used as the transaction unique
// key.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/finsift-dev/finsift/internal/model"
)

// Hash digests the fields that identify a transaction across exports. The
// date goes in ISO form so the same transaction hashes identically whatever
// date format its source file used.
func Hash(rec model.TransactionRecord) string {
	parts := []string{
		rec.DateISO(),
		rec.AccountNumber,
		rec.Action,
		rec.Amount.String(),
		rec.Description,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
