package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BranchProduct is a SKU's stock record owned by one branch or user.
// At most one exists per (SKU, OwnerID).
type BranchProduct struct {
	ID              string          `db:"id" json:"id"`
	SKU             string          `db:"sku" json:"sku"`
	OwnerID         string          `db:"owner_id" json:"owner_id"`
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description"`
	Quantity        int             `db:"quantity" json:"quantity"`
	AlertThreshold  int             `db:"alert_threshold" json:"alert_threshold"`
	UnitCost        decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	UnitRetailPrice decimal.Decimal `db:"unit_retail_price" json:"unit_retail_price"`
	Images          Images          `db:"images" json:"images"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// BranchProductSnapshot is what is left of a branch product after it has been deleted,
// enough to send its remaining quantity back to the warehouse.
type BranchProductSnapshot struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}
