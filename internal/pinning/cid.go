package pinning

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// CIDv0 layout: base58-encoded sha2-256 multihash, 34 raw bytes with a
// 0x12 0x20 prefix (function code, digest length).
const (
	cidRawLength  = 34
	cidHashCode   = 0x12
	cidDigestSize = 0x20
)

// ValidateCID checks that a pinning-service response is a well-formed
// content address before it is written to the ledger.
func ValidateCID(cid string) error {
	if cid == "" {
		return fmt.Errorf("empty content address")
	}
	raw, err := base58.Decode(cid)
	if err != nil {
		return fmt.Errorf("content address is not base58: %w", err)
	}
	if len(raw) != cidRawLength {
		return fmt.Errorf("content address has %d raw bytes, want %d", len(raw), cidRawLength)
	}
	if raw[0] != cidHashCode || raw[1] != cidDigestSize {
		return fmt.Errorf("content address is not a sha2-256 multihash")
	}
	return nil
}
