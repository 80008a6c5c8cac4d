package ledger

import (
	"fmt"
	"math/big"

	"land-registry-workflow/internal/domain"
)

// Minor-unit amounts travel as decimal strings: they routinely exceed the
// range JSON numbers can carry losslessly.

// getLandResult is the raw RPC response for registry_getLand. Field order in
// the contract tuple is owner, location, price, pricePerToken, isAvailable,
// documentRef, tokenCount, tokenIds.
type getLandResult struct {
	Owner         string  `json:"owner"`
	Location      string  `json:"location"`
	Price         string  `json:"price"`
	PricePerToken string  `json:"pricePerToken"`
	IsAvailable   bool    `json:"isAvailable"`
	DocumentRef   string  `json:"documentRef"`
	TokenCount    int     `json:"tokenCount"`
	TokenIDs      []int64 `json:"tokenIds"`
}

func (r *getLandResult) toRecord(id int64) (*domain.LandRecord, error) {
	price, err := parseMinorUnits(r.Price)
	if err != nil {
		return nil, fmt.Errorf("land %d price: %w", id, err)
	}
	perToken, err := parseMinorUnits(r.PricePerToken)
	if err != nil {
		return nil, fmt.Errorf("land %d pricePerToken: %w", id, err)
	}

	return &domain.LandRecord{
		ID:            id,
		Owner:         r.Owner,
		Location:      r.Location,
		Price:         price,
		PricePerToken: perToken,
		IsAvailable:   r.IsAvailable,
		DocumentRef:   r.DocumentRef,
		TokenCount:    r.TokenCount,
		TokenIDs:      r.TokenIDs,
	}, nil
}

// registerLandParams is the wire form of a registerLand transaction.
type registerLandParams struct {
	From          string `json:"from"`
	Location      string `json:"location"`
	Price         string `json:"price"`
	PricePerToken string `json:"pricePerToken"`
	DocumentRef   string `json:"documentRef"`
	TokenCount    int    `json:"tokenCount"`
	Fee           string `json:"fee"`
}

// registerLandResult is the raw RPC response for registry_registerLand.
type registerLandResult struct {
	LandID int64 `json:"landId"`
}

// buyLandParams is the wire form of a buyLand transaction.
type buyLandParams struct {
	From        string `json:"from"`
	LandID      int64  `json:"landId"`
	TokensToBuy int    `json:"tokensToBuy"`
	Value       string `json:"value"`
}

// parseMinorUnits parses a non-negative decimal string into minor units.
func parseMinorUnits(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid minor-unit amount %q", s)
	}
	return v, nil
}

// minorUnitsString renders minor units for the wire; nil becomes "0".
func minorUnitsString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
