package dto

import "time"

const (
	EventStockTransferred = "StockTransferred"
	EventStockReturned    = "StockReturned"
)

type StockEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type StockTransferredPayload struct {
	OwnerID string         `json:"owner_id"`
	Result  TransferResult `json:"result"`
}

type StockReturnedPayload struct {
	OwnerID string       `json:"owner_id"`
	SKU     string       `json:"sku"`
	Result  ReturnResult `json:"result"`
}
