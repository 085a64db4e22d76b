package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/shared"
)

// DataSource identifies the upstream mall platform an order was exported from
type DataSource string

const (
	SourceRakuten DataSource = "rakuten"
	SourceYahoo   DataSource = "yahoo"
	SourceUnknown DataSource = "unknown"
)

// IsValid checks if the data source is a known value
func (s DataSource) IsValid() bool {
	switch s {
	case SourceRakuten, SourceYahoo, SourceUnknown:
		return true
	}
	return false
}

// String returns the string representation of DataSource
func (s DataSource) String() string {
	return string(s)
}

// Order is the canonical, schema-independent representation of one order row.
// OrderCode is unique per owner; uniqueness is enforced by lookup before
// insert, the storage-level index is only a backstop.
type Order struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	CategoryID   *uuid.UUID
	OrderCode    string
	CustomerName string
	Phone        string
	Address      string
	Notes        string
	PriceYen     int64
	OrderDate    time.Time
	DeliveryDate *time.Time
	Source       DataSource
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOrder creates a new order, enforcing the persistence invariant:
// order code and customer name must be non-empty and the price non-negative.
func NewOrder(ownerID uuid.UUID, orderCode, customerName string, priceYen int64, orderDate time.Time) (*Order, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_CODE", "Order code cannot be empty")
	}
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if priceYen < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	now := time.Now()
	return &Order{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		OrderCode:    orderCode,
		CustomerName: customerName,
		PriceYen:     priceYen,
		OrderDate:    orderDate,
		Source:       SourceUnknown,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SetContact sets the optional contact fields
func (o *Order) SetContact(phone, address string) {
	o.Phone = strings.TrimSpace(phone)
	o.Address = strings.TrimSpace(address)
	o.UpdatedAt = time.Now()
}

// SetNotes sets the free-form notes field
func (o *Order) SetNotes(notes string) {
	o.Notes = strings.TrimSpace(notes)
	o.UpdatedAt = time.Now()
}

// SetDeliveryDate sets the requested delivery date. A nil value is a valid
// terminal state, not an error.
func (o *Order) SetDeliveryDate(d *time.Time) {
	o.DeliveryDate = d
	o.UpdatedAt = time.Now()
}

// SetSource records which mall schema the order was imported from
func (o *Order) SetSource(source DataSource) error {
	if !source.IsValid() {
		return shared.NewDomainError("INVALID_SOURCE", "Unknown data source")
	}
	o.Source = source
	o.UpdatedAt = time.Now()
	return nil
}

// SetCategory attaches the order to a grouping category
func (o *Order) SetCategory(categoryID uuid.UUID) {
	if categoryID == uuid.Nil {
		o.CategoryID = nil
	} else {
		id := categoryID
		o.CategoryID = &id
	}
	o.UpdatedAt = time.Now()
}
