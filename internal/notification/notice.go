package notification

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/google/uuid"
)

// TransferNotice tells the receiving owner that stock arrived.
func TransferNotice(p *model.BranchProduct, quantity int, now time.Time) *model.Notification {
	return &model.Notification{
		ID:           uuid.New().String(),
		Title:        "Stock transferred",
		Message:      fmt.Sprintf("%d unit(s) of %s (%s) transferred from the warehouse. New quantity: %d.", quantity, p.Name, p.SKU, p.Quantity),
		Kind:         model.NotificationTransfer,
		TargetUserID: recipient(p.OwnerID),
		CreatedAt:    now,
	}
}

// ThresholdNotice returns the alert for p, or nil when p is above its threshold or alerts
// are disabled for it (threshold 0).
func ThresholdNotice(p model.BranchProduct, now time.Time) *model.Notification {
	if p.AlertThreshold <= 0 || p.Quantity > p.AlertThreshold {
		return nil
	}

	n := &model.Notification{
		ID:           uuid.New().String(),
		TargetUserID: recipient(p.OwnerID),
		CreatedAt:    now,
	}
	if p.Quantity <= 0 {
		n.Kind = model.NotificationOutOfStock
		n.Title = "Out of stock"
		n.Message = fmt.Sprintf("%s (%s) is out of stock. Current quantity: %d.", p.Name, p.SKU, p.Quantity)
	} else {
		n.Kind = model.NotificationLowStock
		n.Title = "Low stock"
		n.Message = fmt.Sprintf("%s (%s) is running low. Current quantity: %d (alert at %d).", p.Name, p.SKU, p.Quantity, p.AlertThreshold)
	}
	return n
}

func recipient(ownerID string) *string {
	if ownerID == "" {
		return nil
	}
	return &ownerID
}
