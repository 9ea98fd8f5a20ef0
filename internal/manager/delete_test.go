package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/abgdnv/gocommerce-admin/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSession_Delete(t *testing.T) {
	testCases := []struct {
		name             string
		id               string
		confirm          ConfirmFunc
		setupMock        func(f *fixture)
		expectedOutcome  DeleteOutcome
		expectedErr      error
		expectedIDs      []string
		expectedMessages []Level
		expectRemote     bool
	}{
		{
			name:    "confirmed delete removes the row",
			id:      "2",
			confirm: Confirmed,
			setupMock: func(f *fixture) {
				f.store.On("DeleteByID", mock.Anything, "2").Return(nil)
				f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
			},
			expectedOutcome:  OutcomeDeleted,
			expectedIDs:      []string{"1", "3"},
			expectedMessages: []Level{LevelSuccess},
			expectRemote:     true,
		},
		{
			name:    "remote failure leaves collection unchanged",
			id:      "3",
			confirm: Confirmed,
			setupMock: func(f *fixture) {
				f.store.On("DeleteByID", mock.Anything, "3").Return(errors.New("store error"))
			},
			expectedOutcome:  OutcomeFailed,
			expectedErr:      errors.New("store error"),
			expectedIDs:      []string{"1", "2", "3"},
			expectedMessages: []Level{LevelFailure},
			expectRemote:     true,
		},
		{
			name:    "remote not found is a failure",
			id:      "1",
			confirm: Confirmed,
			setupMock: func(f *fixture) {
				f.store.On("DeleteByID", mock.Anything, "1").Return(adminerrors.ErrProductNotFound)
			},
			expectedOutcome:  OutcomeFailed,
			expectedErr:      adminerrors.ErrProductNotFound,
			expectedIDs:      []string{"1", "2", "3"},
			expectedMessages: []Level{LevelFailure},
			expectRemote:     true,
		},
		{
			name:            "declined confirmation has no side effects",
			id:              "2",
			confirm:         Declined,
			setupMock:       func(f *fixture) {},
			expectedOutcome: OutcomeDeclined,
			expectedIDs:     []string{"1", "2", "3"},
		},
		{
			name:            "missing confirmation counts as declined",
			id:              "2",
			confirm:         nil,
			setupMock:       func(f *fixture) {},
			expectedOutcome: OutcomeDeclined,
			expectedIDs:     []string{"1", "2", "3"},
		},
		{
			name:            "unknown id is rejected locally",
			id:              "42",
			confirm:         Confirmed,
			setupMock:       func(f *fixture) {},
			expectedOutcome: OutcomeRejected,
			expectedErr:     adminerrors.ErrUnknownProduct,
			expectedIDs:     []string{"1", "2", "3"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := activated(fruit())
			tc.setupMock(f)

			// when
			outcome, err := f.session.Delete(context.Background(), tc.id, tc.confirm)

			// then
			assert.Equal(t, tc.expectedOutcome, outcome)
			switch {
			case tc.expectedErr == nil:
				assert.NoError(t, err)
			case errors.Is(tc.expectedErr, adminerrors.ErrProductNotFound) || errors.Is(tc.expectedErr, adminerrors.ErrUnknownProduct):
				assert.ErrorIs(t, err, tc.expectedErr)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr.Error())
			}
			assert.Equal(t, tc.expectedIDs, productIDs(f.session.Products()))
			assert.Empty(t, f.session.BusyID(), "busy slot must always be released")

			var levels []Level
			for _, n := range f.inbox.Drain() {
				levels = append(levels, n.Level)
			}
			assert.Equal(t, tc.expectedMessages, levels)
			if !tc.expectRemote {
				f.store.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
			}
			f.publisher.AssertExpectations(t)
		})
	}
}

func TestSession_Delete_PublishesEvent(t *testing.T) {
	// given
	f := activated(fruit())
	f.store.On("DeleteByID", mock.Anything, "2").Return(nil)
	var published events.ProductDeletedEvent
	f.publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.ProductDeletedEvent")).
		Run(func(args mock.Arguments) { published = args.Get(1).(events.ProductDeletedEvent) }).
		Return(nil)

	// when
	outcome, err := f.session.Delete(context.Background(), "2", Confirmed)

	// then
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	assert.Equal(t, "2", published.ProductID)
	assert.Equal(t, "admin-1", published.OperatorID)
	assert.WithinDuration(t, time.Now(), published.DeletedAt, time.Minute)
}

func TestSession_Delete_PublishFailureKeepsRemoval(t *testing.T) {
	f := activated(fruit())
	f.store.On("DeleteByID", mock.Anything, "2").Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats: no responders"))

	outcome, err := f.session.Delete(context.Background(), "2", Confirmed)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	assert.Equal(t, []string{"1", "3"}, productIDs(f.session.Products()))
}

func TestSession_Delete_ScenarioSequence(t *testing.T) {
	// given
	f := activated(fruit())
	f.store.On("DeleteByID", mock.Anything, "2").Return(nil)
	f.store.On("DeleteByID", mock.Anything, "3").Return(errors.New("store error"))
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	// when
	_, errOK := f.session.Delete(context.Background(), "2", Confirmed)
	_, errFail := f.session.Delete(context.Background(), "3", Confirmed)

	// then
	assert.NoError(t, errOK)
	assert.Error(t, errFail)
	assert.Equal(t, []string{"1", "3"}, productIDs(f.session.Products()))
	assert.Empty(t, f.session.BusyID())
	notes := f.inbox.Drain()
	require.Len(t, notes, 2)
	assert.Equal(t, LevelSuccess, notes[0].Level)
	assert.Equal(t, LevelFailure, notes[1].Level)
}

func TestSession_Delete_SingleFlight(t *testing.T) {
	// given
	f := activated(fruit())
	started := make(chan struct{})
	release := make(chan struct{})
	f.store.On("DeleteByID", mock.Anything, "1").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.session.Delete(context.Background(), "1", Confirmed)
		done <- err
	}()
	<-started

	// when
	outcome, err := f.session.Delete(context.Background(), "2", Confirmed)
	close(release)

	// then
	assert.Equal(t, OutcomeBusy, outcome)
	assert.ErrorIs(t, err, adminerrors.ErrDeleteInFlight)
	require.NoError(t, <-done)
	f.store.AssertNotCalled(t, "DeleteByID", mock.Anything, "2")
	assert.Equal(t, []string{"2", "3"}, productIDs(f.session.Products()))
}

func TestSession_Delete_ClosedSessionIsNotMutated(t *testing.T) {
	// given
	f := activated(fruit())
	f.store.On("DeleteByID", mock.Anything, "2").Run(func(mock.Arguments) {
		f.session.Close()
	}).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	// when
	outcome, err := f.session.Delete(context.Background(), "2", Confirmed)

	// then
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	assert.Equal(t, []string{"1", "2", "3"}, productIDs(f.session.Products()))
	assert.Empty(t, f.session.BusyID())
}

func TestSession_Delete_ReleasesBusyOnPanic(t *testing.T) {
	f := activated(fruit())
	f.store.On("DeleteByID", mock.Anything, "2").Panic("driver bug")

	assert.Panics(t, func() {
		_, _ = f.session.Delete(context.Background(), "2", Confirmed)
	})
	assert.Empty(t, f.session.BusyID())
}

func TestSession_Delete_RequiresGrant(t *testing.T) {
	f := newFixture()

	outcome, err := f.session.Delete(context.Background(), "1", Confirmed)

	assert.Equal(t, OutcomeRejected, outcome)
	assert.ErrorIs(t, err, adminerrors.ErrNotAuthorized)
	f.store.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestSession_Delete_ConfirmSeesPrompt(t *testing.T) {
	f := activated(fruit())
	var prompt string

	_, err := f.session.Delete(context.Background(), "1", func(_ context.Context, p string) bool {
		prompt = p
		return false
	})

	require.NoError(t, err)
	assert.Equal(t, ConfirmDeletePrompt, prompt)
}
