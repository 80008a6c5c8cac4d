// Package stub provides an in-memory Ledger for testing.
package stub

import (
	"context"
	"fmt"
	"math/big"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/ledger"
)

// Ledger implements ledger.Ledger with in-memory records and scriptable
// rejections. It mimics the registry contract closely enough for workflow
// tests: fee checking, availability flips, token accounting.
type Ledger struct {
	Records map[int64]*domain.LandRecord
	Fee     *big.Int

	// RejectRegister and RejectBuy, when non-empty, make the corresponding
	// write fail with that reason.
	RejectRegister string
	RejectBuy      string

	// Call counters for asserting side-effect ordering.
	RegisterCalls int
	BuyCalls      int

	nextID      int64
	nextTokenID int64
}

// New creates a stub ledger with the given registration fee.
func New(fee *big.Int) *Ledger {
	if fee == nil {
		fee = new(big.Int)
	}
	return &Ledger{
		Records: make(map[int64]*domain.LandRecord),
		Fee:     fee,
	}
}

// Compile-time interface check.
var _ ledger.Ledger = (*Ledger)(nil)

// AddRecord seeds a record, assigning the next ID. Returns the record.
func (l *Ledger) AddRecord(r *domain.LandRecord) *domain.LandRecord {
	l.nextID++
	r.ID = l.nextID
	l.Records[r.ID] = r
	return r
}

// LandCount returns the number of registered records.
func (l *Ledger) LandCount(_ context.Context) (int64, error) {
	return l.nextID, nil
}

// GetLand retrieves a record copy by ID.
func (l *Ledger) GetLand(_ context.Context, id int64) (*domain.LandRecord, error) {
	r, ok := l.Records[id]
	if !ok {
		return nil, fmt.Errorf("land %d not found", id)
	}
	return r.Clone(), nil
}

// RegistrationFee returns the configured fee.
func (l *Ledger) RegistrationFee(_ context.Context) (*big.Int, error) {
	return new(big.Int).Set(l.Fee), nil
}

// RegisterLand creates a record when the attached fee matches.
func (l *Ledger) RegisterLand(_ context.Context, reg ledger.Registration) (int64, error) {
	l.RegisterCalls++

	if l.RejectRegister != "" {
		return 0, fmt.Errorf("%w: %s", domain.ErrLedgerRejected, l.RejectRegister)
	}
	if reg.Fee == nil || reg.Fee.Cmp(l.Fee) != 0 {
		return 0, fmt.Errorf("%w: incorrect registration fee", domain.ErrLedgerRejected)
	}

	tokenIDs := make([]int64, 0, reg.TokenCount)
	for i := 0; i < reg.TokenCount; i++ {
		l.nextTokenID++
		tokenIDs = append(tokenIDs, l.nextTokenID)
	}

	l.nextID++
	l.Records[l.nextID] = &domain.LandRecord{
		ID:            l.nextID,
		Owner:         reg.From,
		Location:      reg.Location,
		Price:         new(big.Int).Set(reg.Price),
		PricePerToken: new(big.Int).Set(reg.PricePerToken),
		IsAvailable:   true,
		DocumentRef:   reg.DocumentRef,
		TokenCount:    reg.TokenCount,
		TokenIDs:      tokenIDs,
	}
	return l.nextID, nil
}

// BuyLand transfers the parcel or the requested tokens when the attached
// value covers the price.
func (l *Ledger) BuyLand(_ context.Context, p ledger.Purchase) error {
	l.BuyCalls++

	if l.RejectBuy != "" {
		return fmt.Errorf("%w: %s", domain.ErrPurchaseRejected, l.RejectBuy)
	}

	r, ok := l.Records[p.LandID]
	if !ok {
		return fmt.Errorf("%w: land %d not found", domain.ErrPurchaseRejected, p.LandID)
	}
	if !r.IsAvailable {
		return fmt.Errorf("%w: already sold", domain.ErrPurchaseRejected)
	}

	if p.TokensToBuy > 0 {
		if p.TokensToBuy > r.TokenCount {
			return fmt.Errorf("%w: not enough tokens", domain.ErrPurchaseRejected)
		}
		expected := new(big.Int).Mul(r.PricePerToken, big.NewInt(int64(p.TokensToBuy)))
		if p.Value == nil || p.Value.Cmp(expected) < 0 {
			return fmt.Errorf("%w: insufficient payment", domain.ErrPurchaseRejected)
		}
		r.TokenCount -= p.TokensToBuy
		r.TokenIDs = r.TokenIDs[p.TokensToBuy:]
		if r.TokenCount == 0 {
			r.IsAvailable = false
		}
		return nil
	}

	if r.TokenCount > 0 {
		return fmt.Errorf("%w: parcel is tokenized", domain.ErrPurchaseRejected)
	}
	if p.Value == nil || p.Value.Cmp(r.Price) < 0 {
		return fmt.Errorf("%w: insufficient payment", domain.ErrPurchaseRejected)
	}
	r.Owner = p.From
	r.IsAvailable = false
	return nil
}
