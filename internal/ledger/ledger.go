// Package ledger provides access to the on-chain land registry contract.
// The ledger is the sole authority on record state and payment sufficiency;
// this package only carries calls and never second-guesses their outcome.
package ledger

import (
	"context"
	"math/big"

	"land-registry-workflow/internal/domain"
)

// Ledger is the registry contract surface used by the workflow.
type Ledger interface {
	// LandCount returns the number of registered land records.
	LandCount(ctx context.Context) (int64, error)

	// GetLand retrieves a record by its ledger-assigned ID.
	GetLand(ctx context.Context, id int64) (*domain.LandRecord, error)

	// RegistrationFee returns the fee, in minor units, that must accompany a
	// registerLand transaction.
	RegistrationFee(ctx context.Context) (*big.Int, error)

	// RegisterLand submits a registration transaction and returns the new
	// record ID. Rejections surface as domain.ErrLedgerRejected with the
	// ledger's reason.
	RegisterLand(ctx context.Context, reg Registration) (int64, error)

	// BuyLand submits a purchase transaction. Rejections surface as
	// domain.ErrPurchaseRejected with the ledger's reason; the caller must
	// re-fetch the record before retrying.
	BuyLand(ctx context.Context, p Purchase) error
}

// Registration is the payload of a registerLand transaction.
type Registration struct {
	From          string   // acting account address
	Location      string   // declared parcel location
	Price         *big.Int // total price in minor units
	PricePerToken *big.Int // per-token price in minor units, zero if not tokenized
	DocumentRef   string   // content address of the pinned document
	TokenCount    int      // number of tokens to issue, 0 for an indivisible parcel
	Fee           *big.Int // attached payment, must equal the current registration fee
}

// Purchase is the payload of a buyLand transaction.
type Purchase struct {
	From        string   // acting account address
	LandID      int64    // target record
	TokensToBuy int      // 0 buys the whole parcel
	Value       *big.Int // attached payment in minor units
}
