package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseLot is stock of one SKU in the shared warehouse pool, not yet owned by a branch.
// A lot that reaches zero is deleted; there is no empty-lot state.
type WarehouseLot struct {
	ID              string          `db:"id" json:"id"`
	SKU             string          `db:"sku" json:"sku"`
	Name            string          `db:"name" json:"name"`
	Quantity        int             `db:"quantity" json:"quantity"`
	UnitCost        decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	UnitRetailPrice decimal.Decimal `db:"unit_retail_price" json:"unit_retail_price"`
	Images          Images          `db:"images" json:"images"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Images is an ordered list of image URIs stored as a jsonb array.
type Images []string

func (i Images) Value() (driver.Value, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(i))
}

func (i *Images) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*i = Images{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("images: unsupported scan type")
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*i = out
	return nil
}

func (i Images) Clone() Images {
	if i == nil {
		return nil
	}
	out := make(Images, len(i))
	copy(out, i)
	return out
}
