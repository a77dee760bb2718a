package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OrderTypeBuy  = "buy"
	OrderTypeSell = "sell"
)

type Order struct {
	ID                int64          `gorm:"primaryKey;autoIncrement"`
	ExternalOrderID   string         `gorm:"column:external_order_id;type:text;not null;uniqueIndex:orders_external_order_id_type_ux,priority:1"`
	OrderType         string         `gorm:"column:order_type;type:text;not null;uniqueIndex:orders_external_order_id_type_ux,priority:2"`
	OrderFinishedDate *string        `gorm:"column:order_finished_date;type:date"`
	OrderFinishedTime *string        `gorm:"column:order_finished_time;type:time"`
	FinishedAt        *time.Time     `gorm:"column:finished_at;type:timestamp;index:orders_finished_date_idx"`
	RawPayload        datatypes.JSON `gorm:"column:raw_payload;type:jsonb"`
}

func (Order) TableName() string {
	return "orders"
}
