package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/abgdnv/gocommerce-admin/pkg/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abgdnv/gocommerce-admin/internal/store"

var _ Store = (*Resilient)(nil)

// Resilient decorates a Store with a circuit breaker around every call and
// exponential retries of idempotent reads. Deletes are never retried.
type Resilient struct {
	next   Store
	cb     *gobreaker.CircuitBreaker[any]
	retry  config.RetryConfig
	tracer trace.Tracer
	logger *slog.Logger
}

// NewResilient wraps next with the policies from cfg.
func NewResilient(next Store, cfg config.ResilienceConfig, logger *slog.Logger) *Resilient {
	logger = logger.With("component", "store")
	st := gobreaker.Settings{
		Name:        "admin-store-cb",
		MaxRequests: cfg.CircuitBreaker.HalfOpenRequests,
		Timeout:     cfg.CircuitBreaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.CircuitBreaker.ConsecutiveFailures ||
				(total > cfg.CircuitBreaker.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.CircuitBreaker.ErrorRatePercent))
		},
		IsSuccessful: isHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Resilient{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker[any](st),
		retry:  cfg.Retry,
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}
}

// isHealthy reports whether err says nothing about the backend's health.
// Missing records and caller cancellation must not trip the breaker.
func isHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, adminerrors.ErrProductNotFound) ||
		errors.Is(err, adminerrors.ErrUserNotFound) ||
		errors.Is(err, context.Canceled)
}

func (r *Resilient) FindAll(ctx context.Context) ([]Product, error) {
	ctx, span := r.startSpan(ctx, "store.FindAll", CollectionProducts)
	defer span.End()

	products, err := retryRead(ctx, r, func() ([]Product, error) {
		return r.next.FindAll(ctx)
	})
	endSpan(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("store.records", len(products)))
	}
	return products, err
}

func (r *Resilient) FindUserByID(ctx context.Context, id string) (*User, error) {
	ctx, span := r.startSpan(ctx, "store.FindUserByID", CollectionUsers, attribute.String("store.id", id))
	defer span.End()

	user, err := retryRead(ctx, r, func() (*User, error) {
		return r.next.FindUserByID(ctx, id)
	})
	endSpan(span, err)
	return user, err
}

func (r *Resilient) DeleteByID(ctx context.Context, id string) error {
	ctx, span := r.startSpan(ctx, "store.DeleteByID", CollectionProducts, attribute.String("store.id", id))
	defer span.End()

	_, err := r.cb.Execute(func() (any, error) {
		return nil, r.next.DeleteByID(ctx, id)
	})
	err = translateBreakerErr(err)
	endSpan(span, err)
	return err
}

// Ping bypasses the breaker so health checks observe the backend directly.
func (r *Resilient) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// BreakerState returns the current circuit breaker state name.
func (r *Resilient) BreakerState() string {
	return r.cb.State().String()
}

func retryRead[T any](ctx context.Context, r *Resilient, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.retry.InitialBackoff
	b.MaxInterval = r.retry.MaxBackoff
	var retries uint64
	if r.retry.MaxAttempts > 0 {
		retries = uint64(r.retry.MaxAttempts - 1)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)

	attempt := 0
	return backoff.RetryWithData(func() (T, error) {
		attempt++
		res, err := r.cb.Execute(func() (any, error) {
			return op()
		})
		if err != nil {
			err = translateBreakerErr(err)
			if isHealthy(err) || errors.Is(err, adminerrors.ErrStoreUnavailable) {
				var zero T
				return zero, backoff.Permanent(err)
			}
			r.logger.DebugContext(ctx, "store read failed", "attempt", attempt, "error", err)
			var zero T
			return zero, err
		}
		return res.(T), nil
	}, policy)
}

func translateBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", adminerrors.ErrStoreUnavailable, err)
	}
	return err
}

func (r *Resilient) startSpan(ctx context.Context, name, collection string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("store.collection", collection))
	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...), trace.WithSpanKind(trace.SpanKindClient))
}

func endSpan(span trace.Span, err error) {
	if err != nil && !isHealthy(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
