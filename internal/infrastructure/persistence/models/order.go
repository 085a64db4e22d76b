package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order domain entity.
// The unique index on (owner_id, order_code) is a backstop only; the
// pipeline enforces uniqueness with a lookup before every insert.
type OrderModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_orders_owner_code"`
	CategoryID   *uuid.UUID `gorm:"type:uuid;index"`
	OrderCode    string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_owner_code"`
	CustomerName string     `gorm:"type:varchar(200);not null"`
	Phone        string     `gorm:"type:varchar(50)"`
	Address      string     `gorm:"type:varchar(500)"`
	Notes        string     `gorm:"type:text"`
	PriceYen     int64      `gorm:"not null;default:0"`
	OrderDate    time.Time  `gorm:"type:date;not null"`
	DeliveryDate *time.Time `gorm:"type:date"`
	Source       string     `gorm:"type:varchar(20);not null;default:'unknown'"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		CategoryID:   m.CategoryID,
		OrderCode:    m.OrderCode,
		CustomerName: m.CustomerName,
		Phone:        m.Phone,
		Address:      m.Address,
		Notes:        m.Notes,
		PriceYen:     m.PriceYen,
		OrderDate:    m.OrderDate,
		DeliveryDate: m.DeliveryDate,
		Source:       order.DataSource(m.Source),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID
	m.OwnerID = o.OwnerID
	m.CategoryID = o.CategoryID
	m.OrderCode = o.OrderCode
	m.CustomerName = o.CustomerName
	m.Phone = o.Phone
	m.Address = o.Address
	m.Notes = o.Notes
	m.PriceYen = o.PriceYen
	m.OrderDate = o.OrderDate
	m.DeliveryDate = o.DeliveryDate
	m.Source = o.Source.String()
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
}

// OrderModelFromDomain creates a persistence model from a domain Order entity
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
