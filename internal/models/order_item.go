package models

import (
	"github.com/shopspring/decimal"
)

// OrderItem holds at most one row per (order, subcategory, grade);
// re-synced lines overwrite in place via that key.
type OrderItem struct {
	ID            int64            `gorm:"primaryKey;autoIncrement"`
	OrderID       int64            `gorm:"column:order_id;not null;uniqueIndex:order_items_order_sub_grade_ux,priority:1"`
	CategoryID    string           `gorm:"column:category_id;type:text;not null;index:order_items_category_idx"`
	SubcategoryID string           `gorm:"column:sub_category_id;type:text;not null;uniqueIndex:order_items_order_sub_grade_ux,priority:2;index:order_items_subcategory_idx"`
	Grade         string           `gorm:"column:grade;type:text;not null;uniqueIndex:order_items_order_sub_grade_ux,priority:3"`
	Quantity      decimal.Decimal  `gorm:"column:quantity;type:numeric(18,4);not null;default:0"`
	Total         decimal.Decimal  `gorm:"column:total;type:numeric(18,2);not null;default:0"`
	Price         *decimal.Decimal `gorm:"column:price;type:numeric(18,2)"`
	Order         *Order           `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	Category      *Category        `gorm:"foreignKey:CategoryID;references:CategoryID"`
	Subcategory   *Subcategory     `gorm:"foreignKey:SubcategoryID;references:SubcategoryID"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
