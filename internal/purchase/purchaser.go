package purchase

import (
	"context"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/ledger"
	"land-registry-workflow/internal/observability"
	"land-registry-workflow/internal/storage"
	"land-registry-workflow/internal/wallet"
)

// Purchaser executes purchases against the ledger and audits every attempt.
type Purchaser struct {
	ledger   ledger.Ledger
	attempts storage.AttemptStore
	verbose  bool
}

// Options for creating Purchaser.
type Options struct {
	Ledger   ledger.Ledger        // required
	Attempts storage.AttemptStore // required

	Verbose bool
}

// New creates a new Purchaser.
func New(opts Options) *Purchaser {
	return &Purchaser{
		ledger:   opts.Ledger,
		attempts: opts.Attempts,
		verbose:  opts.Verbose,
	}
}

// Buy fetches the current record state, computes the payment, and submits a
// buy transaction. The submission is never retried; on rejection the caller
// must re-fetch the record, since its state has likely moved. Returns the
// payment that was attached.
func (p *Purchaser) Buy(ctx context.Context, session *wallet.Session, landID int64, tokensToBuy int) (*big.Int, error) {
	account, err := session.Account()
	if err != nil {
		observability.RecordPurchase(domain.ErrorCode(err))
		return nil, err
	}

	value, err := p.buy(ctx, account, landID, tokensToBuy)

	p.audit(ctx, &domain.WorkflowAttempt{
		AttemptID: uuid.NewString(),
		Kind:      domain.AttemptPurchase,
		Account:   account,
		LandID:    landID,
		Value:     value,
		Outcome:   domain.ErrorCode(err),
		Reason:    failureReason(err),
		CreatedAt: time.Now().UnixMilli(),
	})
	observability.RecordPurchase(domain.ErrorCode(err))

	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *Purchaser) buy(ctx context.Context, account string, landID int64, tokensToBuy int) (*big.Int, error) {
	record, err := p.ledger.GetLand(ctx, landID)
	if err != nil {
		return nil, err
	}

	value, err := ComputeValue(record, tokensToBuy)
	if err != nil {
		return nil, err
	}
	p.log("buying record %d (%d tokens) for %s minor units", landID, tokensToBuy, value)

	err = p.ledger.BuyLand(ctx, ledger.Purchase{
		From:        account,
		LandID:      landID,
		TokensToBuy: tokensToBuy,
		Value:       value,
	})
	if err != nil {
		return value, err
	}
	return value, nil
}

func (p *Purchaser) audit(ctx context.Context, a *domain.WorkflowAttempt) {
	if p.attempts == nil {
		return
	}
	if err := p.attempts.Insert(ctx, a); err != nil {
		log.Printf("[purchase] failed to audit attempt %s: %v", a.AttemptID, err)
	}
}

func failureReason(err error) string {
	if err == nil {
		return ""
	}
	if code := domain.ErrorCode(err); code == "PURCHASE_REJECTED" {
		return err.Error()
	}
	return ""
}

func (p *Purchaser) log(format string, args ...interface{}) {
	if p.verbose {
		log.Printf("[purchase] "+format, args...)
	}
}
