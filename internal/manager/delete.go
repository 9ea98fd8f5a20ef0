package manager

import (
	"context"
	"fmt"
	"slices"
	"time"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/abgdnv/gocommerce-admin/internal/store"
	"github.com/abgdnv/gocommerce-admin/pkg/messaging/events"
)

// ConfirmDeletePrompt is shown before a product is removed.
const ConfirmDeletePrompt = "Are you sure you want to delete this product? This action cannot be undone."

const (
	deleteSucceededMessage = "Product deleted successfully."
	deleteFailedMessage    = "Failed to delete product."
)

type DeleteOutcome string

const (
	OutcomeDeleted  DeleteOutcome = "deleted"
	OutcomeDeclined DeleteOutcome = "declined"
	OutcomeBusy     DeleteOutcome = "busy"
	OutcomeRejected DeleteOutcome = "rejected"
	OutcomeFailed   DeleteOutcome = "failed"
)

// Delete removes product id after the operator confirms it.
//
// The row is marked busy for the duration of the remote call and only one delete
// may be in flight per session. The product leaves the loaded collection only
// once the store confirmed the removal; on failure the collection is untouched.
// The busy mark is cleared on every exit path.
func (s *Session) Delete(ctx context.Context, id string, confirm ConfirmFunc) (DeleteOutcome, error) {
	if outcome, err := s.checkDeletable(id); err != nil {
		s.deps.Metrics.RowDelete(string(outcome))
		return outcome, err
	}
	if confirm == nil || !confirm(ctx, ConfirmDeletePrompt) {
		s.deps.Metrics.RowDelete(string(OutcomeDeclined))
		return OutcomeDeclined, nil
	}
	if outcome, err := s.markBusy(id); err != nil {
		s.deps.Metrics.RowDelete(string(outcome))
		return outcome, err
	}
	defer s.clearBusy(id)

	if err := s.deps.Products.DeleteByID(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete product", "product_id", id, "error", err)
		s.deps.Notifier.Notify(Notification{Level: LevelFailure, Message: deleteFailedMessage, At: time.Now()})
		s.deps.Metrics.RowDelete(string(OutcomeFailed))
		return OutcomeFailed, fmt.Errorf("delete %s %s: %w", store.CollectionProducts, id, err)
	}

	operatorID := s.removeLocal(id)
	s.deps.Notifier.Notify(Notification{Level: LevelSuccess, Message: deleteSucceededMessage, At: time.Now()})
	s.deps.Metrics.RowDelete(string(OutcomeDeleted))
	s.logger.InfoContext(ctx, "product deleted", "product_id", id)

	event := events.ProductDeletedEvent{ProductID: id, OperatorID: operatorID, DeletedAt: time.Now().UTC()}
	if err := s.deps.Publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product deleted event", "product_id", id, "error", err)
	}
	return OutcomeDeleted, nil
}

func (s *Session) checkDeletable(id string) (DeleteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return OutcomeRejected, err
	}
	if s.busyID != "" {
		return OutcomeBusy, fmt.Errorf("%w: %s", adminerrors.ErrDeleteInFlight, s.busyID)
	}
	if !slices.ContainsFunc(s.raw, func(p store.Product) bool { return p.ID == id }) {
		return OutcomeRejected, fmt.Errorf("%w: %s", adminerrors.ErrUnknownProduct, id)
	}
	return "", nil
}

// markBusy re-checks the slot since the confirmation ran without the lock.
func (s *Session) markBusy(id string) (DeleteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return OutcomeRejected, err
	}
	if s.busyID != "" {
		return OutcomeBusy, fmt.Errorf("%w: %s", adminerrors.ErrDeleteInFlight, s.busyID)
	}
	s.busyID = id
	return "", nil
}

func (s *Session) clearBusy(id string) {
	s.mu.Lock()
	if s.busyID == id {
		s.busyID = ""
	}
	s.mu.Unlock()
}

func (s *Session) removeLocal(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alive {
		s.raw = slices.DeleteFunc(s.raw, func(p store.Product) bool { return p.ID == id })
		s.reclampLocked()
	}
	return s.operatorID
}
