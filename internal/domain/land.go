package domain

import "math/big"

// LandRecord represents a registered parcel as held by the ledger.
// Field order mirrors the tuple returned by the registry's getLand call.
type LandRecord struct {
	ID            int64    // assigned by the ledger at creation, monotonically increasing from 1
	Owner         string   // account address of the current owner
	Location      string   // free text, authoritative for document matching
	Price         *big.Int // total parcel price in minor units
	PricePerToken *big.Int // price of one fractional token in minor units; zero when not tokenized
	IsAvailable   bool     // true until the whole parcel or all tokens are sold
	DocumentRef   string   // content address of the pinned ownership document
	TokenCount    int      // 0 means the parcel sells as a single indivisible unit
	TokenIDs      []int64  // issued token identifiers, len == TokenCount
}

// Tokenized reports whether ownership of the parcel is split into tokens.
func (r *LandRecord) Tokenized() bool {
	return r.TokenCount > 0
}

// Clone returns a deep copy of the record. Big integers and the token ID
// slice are copied so callers cannot mutate a shared snapshot.
func (r *LandRecord) Clone() *LandRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Price != nil {
		c.Price = new(big.Int).Set(r.Price)
	}
	if r.PricePerToken != nil {
		c.PricePerToken = new(big.Int).Set(r.PricePerToken)
	}
	if r.TokenIDs != nil {
		c.TokenIDs = append([]int64(nil), r.TokenIDs...)
	}
	return &c
}
