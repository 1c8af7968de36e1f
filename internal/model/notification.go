package model

import "time"

type NotificationKind string

const (
	NotificationLowStock   NotificationKind = "low_stock"
	NotificationOutOfStock NotificationKind = "out_of_stock"
	NotificationTransfer   NotificationKind = "transfer"
	NotificationOther      NotificationKind = "other"
)

type Notification struct {
	ID           string           `db:"id" json:"id"`
	Title        string           `db:"title" json:"title"`
	Message      string           `db:"message" json:"message"`
	Kind         NotificationKind `db:"kind" json:"kind"`
	Read         bool             `db:"read" json:"read"`
	TargetUserID *string          `db:"target_user_id" json:"target_user_id"` // nil broadcasts to everyone
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
