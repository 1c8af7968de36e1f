package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/notification"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"go.uber.org/zap"
)

type stockAlertNotifier struct {
	repo     notification.Repository
	debounce notification.Debouncer
	logger   logger.ZapLogger
	now      func() time.Time
}

// NewStockAlertNotifier builds the threshold checker. A nil debouncer lets every check
// that finds the product in band emit a notification.
func NewStockAlertNotifier(repo notification.Repository, debounce notification.Debouncer, log logger.ZapLogger) notification.AlertNotifier {
	return &stockAlertNotifier{
		repo:     repo,
		debounce: debounce,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (n *stockAlertNotifier) CheckThreshold(ctx context.Context, p model.BranchProduct) error {
	notice := notification.ThresholdNotice(p, n.now())
	if notice == nil {
		return nil
	}

	if n.debounce != nil {
		key := fmt.Sprintf("stock-alert:%s:%s", p.ID, notice.Kind)
		allowed, err := n.debounce.Allow(ctx, key)
		if err != nil {
			// fail open: a duplicate alert beats a missed one
			n.logger.Warn("stock alert debounce unavailable", zap.String("product_id", p.ID), zap.Error(err))
		} else if !allowed {
			n.logger.Debug("stock alert suppressed", zap.String("product_id", p.ID), zap.String("kind", string(notice.Kind)))
			return nil
		}
	}

	if err := n.repo.Create(ctx, notice); err != nil {
		return fmt.Errorf("failed to create stock alert: %w", err)
	}

	n.logger.Info("stock alert emitted",
		zap.String("product_id", p.ID),
		zap.String("sku", p.SKU),
		zap.String("kind", string(notice.Kind)),
		zap.Int("quantity", p.Quantity),
		zap.Int("threshold", p.AlertThreshold),
	)
	return nil
}
