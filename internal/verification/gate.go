// Package verification gates registration on the declared parcel location
// matching the location extracted from the uploaded document.
package verification

import (
	"fmt"
	"strings"

	"land-registry-workflow/internal/domain"
)

// Verify compares the landowner-declared location against extracted document
// metadata. Both sides are normalized (whitespace trimmed, case folded)
// before comparison; only exact normalized equality passes. Absent or empty
// extraction fails the same way a differing string does.
//
// Verify is pure and must run before any pinning or ledger call.
func Verify(declared string, extracted *domain.ExtractedMetadata) error {
	if extracted == nil || strings.TrimSpace(extracted.Location) == "" {
		return fmt.Errorf("%w: no extracted location", domain.ErrLocationMismatch)
	}

	if !strings.EqualFold(strings.TrimSpace(declared), strings.TrimSpace(extracted.Location)) {
		return fmt.Errorf("%w: declared %q, document says %q", domain.ErrLocationMismatch, declared, extracted.Location)
	}
	return nil
}
