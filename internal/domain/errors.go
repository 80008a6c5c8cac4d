package domain

import "errors"

// Workflow error taxonomy. Validation errors are recoverable: the caller may
// correct input and retry with no side effects. Collaborator failures carry
// the collaborator's reason string via wrapping and are not retried
// automatically, since retrying a pin or a ledger submission risks duplicate
// uploads or duplicate-intent transactions.
var (
	// ErrIncompleteDraft is returned when a registration draft is missing
	// location, price, or document.
	ErrIncompleteDraft = errors.New("registration draft is incomplete")

	// ErrInvalidPrice is returned when the entered price is not a positive decimal.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidTokenCount is returned when the requested token count is not a
	// positive integer or exceeds the advisory maximum from the document.
	ErrInvalidTokenCount = errors.New("invalid token count")

	// ErrLocationMismatch is returned when the declared location does not match
	// the location extracted from the uploaded document.
	ErrLocationMismatch = errors.New("declared location does not match document")

	// ErrPinningFailed is returned when the document could not be pinned.
	ErrPinningFailed = errors.New("document pinning failed")

	// ErrLedgerRejected is returned when the ledger rejects a registration
	// transaction. A document pinned earlier in the attempt may remain orphaned.
	ErrLedgerRejected = errors.New("ledger rejected registration")

	// ErrInvalidPurchaseRequest is returned when the requested token quantity
	// cannot be satisfied by the record.
	ErrInvalidPurchaseRequest = errors.New("invalid purchase request")

	// ErrNotForSale is returned when attempting to buy a record that is no
	// longer available.
	ErrNotForSale = errors.New("record is not for sale")

	// ErrAlreadyTokenized is returned when attempting to buy a tokenized parcel
	// whole; tokenized parcels sell only token by token.
	ErrAlreadyTokenized = errors.New("parcel is tokenized and cannot be bought whole")

	// ErrPurchaseRejected is returned when the ledger rejects a purchase
	// transaction. The caller must re-fetch the record before retrying.
	ErrPurchaseRejected = errors.New("ledger rejected purchase")

	// ErrExtractionFailed is returned when document metadata extraction fails.
	ErrExtractionFailed = errors.New("document extraction failed")

	// ErrWalletNotConnected blocks all workflow entry without an acting account.
	ErrWalletNotConnected = errors.New("wallet not connected")
)

// ErrorCode maps a workflow error to a stable code used for audit records and
// metrics labels. A nil error maps to "ACCEPTED".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "ACCEPTED"
	case errors.Is(err, ErrIncompleteDraft):
		return "INCOMPLETE_DRAFT"
	case errors.Is(err, ErrInvalidPrice):
		return "INVALID_PRICE"
	case errors.Is(err, ErrInvalidTokenCount):
		return "INVALID_TOKEN_COUNT"
	case errors.Is(err, ErrLocationMismatch):
		return "LOCATION_MISMATCH"
	case errors.Is(err, ErrPinningFailed):
		return "PINNING_FAILED"
	case errors.Is(err, ErrLedgerRejected):
		return "LEDGER_REJECTED"
	case errors.Is(err, ErrInvalidPurchaseRequest):
		return "INVALID_PURCHASE_REQUEST"
	case errors.Is(err, ErrNotForSale):
		return "NOT_FOR_SALE"
	case errors.Is(err, ErrAlreadyTokenized):
		return "ALREADY_TOKENIZED"
	case errors.Is(err, ErrPurchaseRejected):
		return "PURCHASE_REJECTED"
	case errors.Is(err, ErrExtractionFailed):
		return "EXTRACTION_FAILED"
	case errors.Is(err, ErrWalletNotConnected):
		return "WALLET_NOT_CONNECTED"
	default:
		return "INTERNAL"
	}
}
