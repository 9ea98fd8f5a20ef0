package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/abgdnv/gocommerce-admin/internal/metrics"
	"github.com/abgdnv/gocommerce-admin/internal/store"
)

// ErrAuthorizationDenied is carried by every negative Decision.
var ErrAuthorizationDenied = errors.New("authorization denied")

type DenyReason string

const (
	ReasonNone         DenyReason = ""
	ReasonNoIdentity   DenyReason = "no_identity"
	ReasonUserNotFound DenyReason = "user_not_found"
	ReasonRoleMismatch DenyReason = "role_mismatch"
	ReasonLookupFailed DenyReason = "lookup_failed"
)

// Decision is the outcome of an access check. The caller acts on it; the guard never navigates.
type Decision struct {
	Granted    bool
	OperatorID string
	Reason     DenyReason
	Err        error
}

func granted(operatorID string) Decision {
	return Decision{Granted: true, OperatorID: operatorID}
}

func denied(operatorID string, reason DenyReason, cause error) Decision {
	err := fmt.Errorf("%w: %s", ErrAuthorizationDenied, reason)
	if cause != nil {
		err = fmt.Errorf("%w: %s: %w", ErrAuthorizationDenied, reason, cause)
	}
	return Decision{OperatorID: operatorID, Reason: reason, Err: err}
}

// Guard admits operators whose user record carries the required role.
type Guard struct {
	users   store.UserStore
	role    string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewGuard(users store.UserStore, role string, logger *slog.Logger, m *metrics.Metrics) *Guard {
	return &Guard{
		users:   users,
		role:    role,
		logger:  logger.With("component", "guard"),
		metrics: m,
	}
}

// Check resolves the operator through identity and looks up its user record.
// Any failure, including a failed lookup, denies access; nothing is retried.
func (g *Guard) Check(ctx context.Context, identity IdentityResolver) Decision {
	d := g.check(ctx, identity)
	if d.Granted {
		g.metrics.GuardDecision("granted")
		g.logger.DebugContext(ctx, "access granted", "operator_id", d.OperatorID)
		return d
	}
	g.metrics.GuardDecision(string(d.Reason))
	if d.Reason == ReasonLookupFailed {
		g.logger.ErrorContext(ctx, "access check failed", "operator_id", d.OperatorID, "error", d.Err)
	} else {
		g.logger.InfoContext(ctx, "access denied", "operator_id", d.OperatorID, "reason", d.Reason)
	}
	return d
}

func (g *Guard) check(ctx context.Context, identity IdentityResolver) Decision {
	if identity == nil {
		return denied("", ReasonNoIdentity, nil)
	}
	operatorID, ok := identity.CurrentOperatorID(ctx)
	if !ok || operatorID == "" {
		return denied("", ReasonNoIdentity, nil)
	}
	user, err := g.users.FindUserByID(ctx, operatorID)
	switch {
	case errors.Is(err, adminerrors.ErrUserNotFound):
		return denied(operatorID, ReasonUserNotFound, nil)
	case err != nil:
		return denied(operatorID, ReasonLookupFailed, err)
	case user == nil:
		return denied(operatorID, ReasonUserNotFound, nil)
	case user.Role != g.role:
		return denied(operatorID, ReasonRoleMismatch, nil)
	}
	return granted(operatorID)
}
