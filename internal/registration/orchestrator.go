// Package registration orchestrates the land registration workflow:
// draft validation → pricing → location verification → fee lookup →
// document pinning → ledger submission, with an audit record per attempt.
package registration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/ledger"
	"land-registry-workflow/internal/observability"
	"land-registry-workflow/internal/pricing"
	"land-registry-workflow/internal/storage"
	"land-registry-workflow/internal/verification"
	"land-registry-workflow/internal/wallet"
)

// Pinner uploads a document to content-addressable storage.
type Pinner interface {
	Pin(ctx context.Context, filename string, document io.Reader) (string, error)
}

// Orchestrator coordinates one registration attempt end to end. Side effects
// are ordered so every validation failure happens before the first external
// call, and pinning happens before ledger submission: a rejected submission
// can leave an orphaned pin, but an accepted record never points at a
// document that failed to pin.
type Orchestrator struct {
	ledger   ledger.Ledger
	pinner   Pinner
	attempts storage.AttemptStore
	verbose  bool
}

// Options for creating Orchestrator.
type Options struct {
	Ledger   ledger.Ledger        // required
	Pinner   Pinner               // required
	Attempts storage.AttemptStore // required

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		ledger:   opts.Ledger,
		pinner:   opts.Pinner,
		attempts: opts.Attempts,
		verbose:  opts.Verbose,
	}
}

// Register runs the full registration workflow for a draft and returns the
// ledger-assigned record ID. Every attempt, accepted or not, is written to
// the audit trail; the draft itself is never persisted.
func (o *Orchestrator) Register(ctx context.Context, session *wallet.Session, draft *domain.RegistrationDraft) (int64, error) {
	account, err := session.Account()
	if err != nil {
		observability.RecordRegistration(domain.ErrorCode(err))
		return 0, err
	}

	landID, pinnedRef, value, err := o.register(ctx, account, draft)

	location := ""
	if draft != nil {
		location = strings.TrimSpace(draft.Location)
	}
	o.audit(ctx, &domain.WorkflowAttempt{
		AttemptID: uuid.NewString(),
		Kind:      domain.AttemptRegistration,
		Account:   account,
		LandID:    landID,
		Location:  location,
		Value:     value,
		PinnedRef: pinnedRef,
		Outcome:   domain.ErrorCode(err),
		Reason:    failureReason(err),
		CreatedAt: time.Now().UnixMilli(),
	})
	observability.RecordRegistration(domain.ErrorCode(err))

	if err != nil && pinnedRef != "" {
		// The document is pinned but the ledger holds no record pointing at
		// it. The audit row above is the only evidence of the orphan.
		observability.RecordOrphanedPin()
		log.Printf("[registration] orphaned pin %s after rejected submission: %v", pinnedRef, err)
	}

	return landID, err
}

// register runs the workflow phases and reports how far the attempt got:
// pinnedRef is non-empty once the document is pinned, value is non-nil once
// pricing succeeded.
func (o *Orchestrator) register(ctx context.Context, account string, draft *domain.RegistrationDraft) (landID int64, pinnedRef string, value *big.Int, err error) {
	// Phase 1: draft completeness. No external calls yet.
	if err := checkDraft(draft); err != nil {
		return 0, "", nil, err
	}

	tokenCount := 0
	if draft.Fractionalize {
		tokenCount = draft.RequestedTokenCount
		if tokenCount <= 0 {
			return 0, "", nil, fmt.Errorf("%w: %d", domain.ErrInvalidTokenCount, tokenCount)
		}
	}

	// Phase 2: pricing. Still side-effect free, so a bad price or token
	// count never costs a pin or a fee lookup.
	price, err := pricing.Compute(draft.Price, tokenCount, draft.Extracted.MaxTokenHint())
	if err != nil {
		return 0, "", nil, err
	}
	o.log("priced %q at %s minor units (%d tokens)", draft.Location, price.Total, tokenCount)

	// Phase 3: location verification gate.
	if err := verification.Verify(draft.Location, draft.Extracted); err != nil {
		return 0, "", price.Total, err
	}

	// Phase 4: fee lookup.
	fee, err := o.ledger.RegistrationFee(ctx)
	if err != nil {
		return 0, "", price.Total, err
	}

	// Phase 5: pin the document.
	pinnedRef, err = o.pinner.Pin(ctx, draft.DocumentName, bytes.NewReader(draft.Document))
	if err != nil {
		return 0, "", price.Total, err
	}
	o.log("pinned %s as %s", draft.DocumentName, pinnedRef)

	// Phase 6: ledger submission. Never retried: a duplicate-intent
	// transaction would register the parcel twice.
	landID, err = o.ledger.RegisterLand(ctx, ledger.Registration{
		From:          account,
		Location:      strings.TrimSpace(draft.Location),
		Price:         price.Total,
		PricePerToken: price.PerToken,
		DocumentRef:   pinnedRef,
		TokenCount:    tokenCount,
		Fee:           fee,
	})
	if err != nil {
		return 0, pinnedRef, price.Total, err
	}

	o.log("registered %q as record %d", draft.Location, landID)
	return landID, pinnedRef, price.Total, nil
}

// checkDraft validates draft completeness. Only PDF documents are accepted.
func checkDraft(draft *domain.RegistrationDraft) error {
	if draft == nil {
		return domain.ErrIncompleteDraft
	}
	if strings.TrimSpace(draft.Location) == "" {
		return fmt.Errorf("%w: missing location", domain.ErrIncompleteDraft)
	}
	if strings.TrimSpace(draft.Price) == "" {
		return fmt.Errorf("%w: missing price", domain.ErrIncompleteDraft)
	}
	if len(draft.Document) == 0 {
		return fmt.Errorf("%w: missing document", domain.ErrIncompleteDraft)
	}
	if draft.ContentType != domain.DocumentContentType {
		return fmt.Errorf("%w: document must be %s, got %q", domain.ErrIncompleteDraft, domain.DocumentContentType, draft.ContentType)
	}
	return nil
}

// audit writes the attempt record. Audit failures are logged, never allowed
// to mask the workflow outcome.
func (o *Orchestrator) audit(ctx context.Context, a *domain.WorkflowAttempt) {
	if o.attempts == nil {
		return
	}
	if err := o.attempts.Insert(ctx, a); err != nil {
		log.Printf("[registration] failed to audit attempt %s: %v", a.AttemptID, err)
	}
}

// failureReason extracts the collaborator reason for the audit record.
// Validation failures carry no external reason.
func failureReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrPinningFailed) ||
		errors.Is(err, domain.ErrLedgerRejected) ||
		errors.Is(err, domain.ErrExtractionFailed) ||
		errors.Is(err, domain.ErrPurchaseRejected) {
		return err.Error()
	}
	return ""
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[registration] "+format, args...)
	}
}
