package domain

import (
	"strconv"
	"strings"
)

// DocumentContentType is the only document format accepted for registration.
const DocumentContentType = "application/pdf"

// RegistrationDraft is the transient input set for one registration attempt.
// It is owned by the caller and discarded after submission or failure; it is
// never partially persisted.
type RegistrationDraft struct {
	Location            string             // landowner-declared parcel location
	Price               string             // total price as a decimal string in major units
	Document            []byte             // raw document payload
	DocumentName        string             // original filename, used as pin metadata
	ContentType         string             // must equal DocumentContentType
	Fractionalize       bool               // split ownership into tokens
	RequestedTokenCount int                // meaningful only when Fractionalize is set
	Extracted           *ExtractedMetadata // metadata extracted from Document, nil if extraction never ran
}

// ExtractedMetadata is the structured property data returned by the
// extraction service for an uploaded document.
type ExtractedMetadata struct {
	Location string // property location as printed on the document
	LandArea string // e.g. "500 sq. meters"; advisory only
}

// MaxTokenHint derives the advisory maximum token count from the extracted
// land area. The hint is the leading integer of the area string; 0 means no
// hint is available and any positive token count is acceptable.
func (m *ExtractedMetadata) MaxTokenHint() int {
	if m == nil {
		return 0
	}
	s := strings.TrimSpace(m.LandArea)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
