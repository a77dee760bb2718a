package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piyawatSritavong/upgrade-order-report/internal/models"
)

// ReportParams filters the stock report aggregation. Nil string fields
// mean "unfiltered"; the sell-total bounds always apply as a group-level
// range check.
type ReportParams struct {
	CategoryID    *string
	SubCategoryID *string
	Grade         *string
	OrderID       *string
	StartDate     *string
	EndDate       *string
	MinSellTotal  decimal.Decimal
	MaxSellTotal  decimal.Decimal
	Limit         int
	Offset        int
}

// ReportRow is one aggregated subcategory group. OrderID and
// OrderFinishedDate reference the most recently finished order in the
// group and may be absent when the group has no dated orders.
type ReportRow struct {
	SubCategoryID     string
	CategoryID        string
	BuyQty            decimal.Decimal
	BuyTotal          decimal.Decimal
	SellQty           decimal.Decimal
	SellTotal         decimal.Decimal
	OrderID           *string
	OrderFinishedDate *time.Time
}

type Repository interface {
	// Upserts overwrite the non-key columns on conflict.
	UpsertCategory(ctx context.Context, item *models.Category) error
	UpsertSubcategory(ctx context.Context, item *models.Subcategory) error
	// Ensure variants insert-if-missing and leave existing rows alone;
	// used for synthetic and placeholder parents.
	EnsureCategory(ctx context.Context, item *models.Category) error
	EnsureSubcategory(ctx context.Context, item *models.Subcategory) error

	// UpsertOrder converges on (external_order_id, order_type) and
	// returns the surviving row id.
	UpsertOrder(ctx context.Context, item *models.Order) (int64, error)
	// UpsertOrderItem converges on (order_id, sub_category_id, grade).
	UpsertOrderItem(ctx context.Context, item *models.OrderItem) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	ListSubcategories(ctx context.Context) ([]models.Subcategory, error)

	ReportRows(ctx context.Context, params ReportParams) ([]ReportRow, error)
	CountReportGroups(ctx context.Context, params ReportParams) (int64, error)
}
