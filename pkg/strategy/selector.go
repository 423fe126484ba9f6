package strategy

import (
	"context"
	"errors"

	"github.com/carebridge-health/dme-orders/pkg/common/logger"
	"github.com/carebridge-health/dme-orders/pkg/common/models"
)

// Extractor turns raw note text into a structured order.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, rawText string) (*models.DeviceOrder, error)
}

// Selector tries the primary extractor once per request and falls back
// to the rule-based extractor on any failure. The primary is never
// retried within a request. This is a fixed two-element chain, not a
// plugin system.
type Selector struct {
	primary  Extractor
	fallback Extractor
}

// NewSelector builds the chain. primary may be nil, in which case every
// request goes straight to the fallback.
func NewSelector(primary, fallback Extractor) *Selector {
	if fallback == nil {
		panic("strategy: fallback extractor is required")
	}
	return &Selector{primary: primary, fallback: fallback}
}

// Extract runs the chain and reports which strategy produced the
// order. Primary failures are logged as warnings and absorbed; only the
// fallback's outcome reaches the caller.
func (s *Selector) Extract(ctx context.Context, rawText string) (*models.DeviceOrder, string, error) {
	if s.primary != nil {
		order, err := s.primary.Extract(ctx, rawText)
		if err == nil {
			return order, s.primary.Name(), nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, "", err
		}
		logger.Log.WithError(err).WithField("strategy", s.primary.Name()).
			Warn("primary extraction failed, falling back to rules")
	}

	order, err := s.fallback.Extract(ctx, rawText)
	if err != nil {
		return nil, "", err
	}
	return order, s.fallback.Name(), nil
}

type validated struct {
	inner Extractor
	check func(*models.DeviceOrder) error
}

// Validated wraps an extractor so that orders failing check count as
// extraction failures. Used to gate the LLM path with the same rules
// the rule-based parser applies to itself.
func Validated(inner Extractor, check func(*models.DeviceOrder) error) Extractor {
	return &validated{inner: inner, check: check}
}

func (v *validated) Name() string {
	return v.inner.Name()
}

func (v *validated) Extract(ctx context.Context, rawText string) (*models.DeviceOrder, error) {
	order, err := v.inner.Extract(ctx, rawText)
	if err != nil {
		return nil, err
	}
	if err := v.check(order); err != nil {
		return nil, err
	}
	return order, nil
}
