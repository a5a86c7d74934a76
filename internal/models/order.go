package models

import "time"

// Order states
const (
	OrderStateBasket    = "basket"
	OrderStateNew       = "new"
	OrderStateConfirmed = "confirmed"
	OrderStateAssembled = "assembled"
	OrderStateSent      = "sent"
	OrderStateDelivered = "delivered"
	OrderStateCanceled  = "canceled"
)

// Order is a buyer's basket or placed order
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id" validate:"required"`
	Dt        time.Time `gorm:"autoCreateTime" json:"dt"`
	State     string    `gorm:"type:varchar(15);not null" json:"state" validate:"required,oneof=basket new confirmed assembled sent delivered canceled"`
	ContactID *uint     `gorm:"index" json:"contact_id"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Contact *Contact `gorm:"foreignKey:ContactID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName returns the table name for Order
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one offer in an order; an offer appears at most once per order
type OrderItem struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	OrderID       uint `gorm:"not null;uniqueIndex:idx_order_items_unique" json:"order_id" validate:"required"`
	ProductInfoID uint `gorm:"not null;uniqueIndex:idx_order_items_unique" json:"product_info_id" validate:"required"`
	Quantity      uint `gorm:"not null" json:"quantity"`

	Order       *Order       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	ProductInfo *ProductInfo `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}
