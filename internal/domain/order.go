package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// OrderStatuses lists every representable status
var OrderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// ParseOrderStatus converts raw into an OrderStatus, rejecting unknown values
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("invalid order status %q: must be one of %s", raw, JoinOrderStatuses(", "))
	}
	return status, nil
}

// JoinOrderStatuses lists the known statuses separated by sep
func JoinOrderStatuses(sep string) string {
	names := make([]string, len(OrderStatuses))
	for i, s := range OrderStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, sep)
}

// UnmarshalJSON only accepts the known status strings. Unknown values are
// reported as a *json.UnmarshalTypeError so the decoder attaches the field path.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, err := ParseOrderStatus(raw)
	if err != nil {
		return &json.UnmarshalTypeError{
			Value: "string " + strconv.Quote(raw),
			Type:  reflect.TypeOf(status),
		}
	}
	*s = status
	return nil
}

// Order is a customer order with its line items
type Order struct {
	ID        int64       `json:"id" db:"id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	Status    OrderStatus `json:"status" db:"status"`
	Items     []OrderItem `json:"items"`
}

// OrderItem links an order to a product with the ordered quantity
type OrderItem struct {
	ID        int64 `json:"id" db:"id"`
	OrderID   int64 `json:"order_id" db:"order_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}

// ItemRequest is a requested order line before it is persisted
type ItemRequest struct {
	ProductID int64
	Quantity  int
}
