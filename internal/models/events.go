package models

import "time"

// Event types
const (
	EventTypeOrderPlaced = "order.placed"
)

// BaseEvent contains common event fields
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published after a checkout commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	ItemCount  int    `json:"item_count"`
	Total      int64  `json:"total"`
	CouponCode string `json:"coupon_code,omitempty"`
}
