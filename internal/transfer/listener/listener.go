package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/transfer"
	"github.com/fekuna/omnipos-stock-service/internal/transfer/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventBranchProductDeleted = "BranchProductDeleted"

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// ReturnListener sends the stock of branch products deleted elsewhere back to the warehouse.
type ReturnListener struct {
	consumer MessageReader
	uc       transfer.UseCase
	logger   logger.ZapLogger
}

func NewReturnListener(consumer MessageReader, uc transfer.UseCase, logger logger.ZapLogger) *ReturnListener {
	return &ReturnListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *ReturnListener) Start(ctx context.Context) {
	l.logger.Info("Starting stock return Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping stock return Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type BranchProductDeletedEvent struct {
	EventID   string                `json:"event_id"`
	EventType string                `json:"event_type"`
	Payload   DeletedProductPayload `json:"payload"`
	Timestamp time.Time             `json:"timestamp"`
}

type DeletedProductPayload struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	DeletedBy string `json:"deleted_by"`
	Reason    string `json:"reason"`
}

func (l *ReturnListener) processMessage(ctx context.Context, value []byte) {
	var event BranchProductDeletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventBranchProductDeleted {
		return
	}

	p := event.Payload
	l.logger.Info("Processing BranchProductDeleted event",
		zap.String("event_id", event.EventID),
		zap.String("product_id", p.ProductID),
		zap.Int("quantity", p.Quantity),
	)

	res, err := l.uc.ReturnToWarehouse(ctx, &dto.ReturnInput{
		Snapshot: model.BranchProductSnapshot{
			ProductID: p.ProductID,
			SKU:       p.SKU,
			OwnerID:   p.OwnerID,
			Name:      p.Name,
			Quantity:  p.Quantity,
		},
		Reason:       p.Reason,
		ActingUserID: p.DeletedBy,
	})
	if errors.Is(err, inventory.ErrProductExists) {
		l.logger.Warn("Ignoring deletion event for a product that still exists",
			zap.String("event_id", event.EventID),
			zap.String("product_id", p.ProductID),
		)
		return
	}
	if err != nil {
		// TODO: park failed returns on a dead-letter topic instead of dropping them after logging.
		l.logger.Error("Failed to return deleted product stock",
			zap.String("event_id", event.EventID),
			zap.String("product_id", p.ProductID),
			zap.Error(err),
		)
		return
	}

	if res.AlreadyReturned {
		l.logger.Info("Deleted product stock already returned",
			zap.String("event_id", event.EventID),
			zap.String("product_id", p.ProductID),
			zap.String("reference_id", res.ReferenceID),
		)
		return
	}
	l.logger.Info("Returned deleted product stock",
		zap.String("product_id", p.ProductID),
		zap.String("lot_id", res.LotID),
		zap.Int("returned", res.Returned),
		zap.Bool("retired", res.Retired),
	)
}
