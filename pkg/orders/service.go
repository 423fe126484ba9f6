package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/kafka"
	"github.com/carebridge-health/dme-orders/pkg/common/logger"
	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/carebridge-health/dme-orders/pkg/strategy"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventOrderExtracted is published for every persisted order.
const EventOrderExtracted = "order.extracted"

type Service struct {
	selector  *strategy.Selector
	repo      *Repository
	cache     *Cache
	producer  *kafka.Producer
	recordTTL time.Duration
}

func NewService(selector *strategy.Selector, repo *Repository, cache *Cache, producer *kafka.Producer, recordTTL time.Duration) *Service {
	return &Service{
		selector:  selector,
		repo:      repo,
		cache:     cache,
		producer:  producer,
		recordTTL: recordTTL,
	}
}

// Process turns raw note text into a persisted, published order record.
// Validation failures surface unchanged from the extraction engine.
func (s *Service) Process(ctx context.Context, rawText string) (*Record, error) {
	order, strategyName, hit := s.fromCache(ctx, rawText)
	if !hit {
		var err error
		order, strategyName, err = s.selector.Extract(ctx, rawText)
		if err != nil {
			return nil, err
		}
		if cacheable(strategyName) {
			s.cache.Put(ctx, rawText, order)
		}
	}

	record := &Record{
		ID:             uuid.New().String(),
		PatientID:      order.PatientID,
		PatientName:    order.PatientName,
		DOB:            order.DOB,
		Diagnosis:      order.Diagnosis,
		DeviceType:     order.DeviceType,
		Provider:       order.OrderingProvider,
		Specifications: datatypes.JSONMap(order.Specifications),
		Strategy:       strategyName,
		Status:         StatusExtracted,
		OrderedAt:      order.OrderedAt,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting order record: %w", err)
	}

	data := map[string]interface{}{
		"order_id": record.ID,
		"payload":  order.Payload(),
	}
	if err := s.producer.PublishEvent(ctx, EventOrderExtracted, "extraction-service", data); err != nil {
		logger.Log.WithError(err).Error("failed to publish order event")
		_ = s.repo.MarkFailed(ctx, record.ID, err.Error())
		return nil, fmt.Errorf("publishing order event: %w", err)
	}

	return record, nil
}

// cacheable limits the cache to the deterministic rule-based path; LLM
// output may differ between calls over the same note.
func cacheable(strategyName string) bool {
	return strategyName == "rules"
}

func (s *Service) fromCache(ctx context.Context, rawText string) (*models.DeviceOrder, string, bool) {
	order, ok := s.cache.Get(ctx, rawText)
	if !ok {
		return nil, "", false
	}
	return order, "cache", true
}

func (s *Service) Status(ctx context.Context, id string) (*Record, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Cleanup(ctx context.Context) error {
	return s.repo.CleanupExpired(ctx, s.recordTTL)
}
