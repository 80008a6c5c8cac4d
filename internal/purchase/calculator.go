// Package purchase computes purchase payments and carries buy transactions
// to the ledger. The calculator is pure: the ledger remains the authority on
// whether the payment is sufficient at execution time.
package purchase

import (
	"fmt"
	"math/big"

	"land-registry-workflow/internal/domain"
)

// ComputeValue derives the payment, in minor units, for buying a record.
// requestedTokens > 0 buys that many tokens of a tokenized parcel;
// requestedTokens == 0 buys the whole parcel, which tokenized parcels refuse.
// The returned amount is always a fresh big.Int; recomputing against the
// same record state yields the same value.
func ComputeValue(record *domain.LandRecord, requestedTokens int) (*big.Int, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: no record", domain.ErrInvalidPurchaseRequest)
	}
	if requestedTokens < 0 {
		return nil, fmt.Errorf("%w: negative token quantity %d", domain.ErrInvalidPurchaseRequest, requestedTokens)
	}
	if !record.IsAvailable {
		return nil, fmt.Errorf("%w: record %d", domain.ErrNotForSale, record.ID)
	}

	if requestedTokens > 0 {
		if record.TokenCount <= 0 {
			return nil, fmt.Errorf("%w: record %d is not tokenized", domain.ErrInvalidPurchaseRequest, record.ID)
		}
		if requestedTokens > record.TokenCount {
			return nil, fmt.Errorf("%w: %d tokens requested, %d remain", domain.ErrInvalidPurchaseRequest, requestedTokens, record.TokenCount)
		}
		return new(big.Int).Mul(record.PricePerToken, big.NewInt(int64(requestedTokens))), nil
	}

	if record.TokenCount > 0 {
		return nil, fmt.Errorf("%w: record %d", domain.ErrAlreadyTokenized, record.ID)
	}
	return new(big.Int).Set(record.Price), nil
}
