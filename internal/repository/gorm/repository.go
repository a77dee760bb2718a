package gormrepository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/piyawatSritavong/upgrade-order-report/internal/models"
	"github.com/piyawatSritavong/upgrade-order-report/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertCategory(ctx context.Context, item *models.Category) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category_name",
		}),
	}).Create(item).Error
}

func (s *Store) EnsureCategory(ctx context.Context, item *models.Category) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_id"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) UpsertSubcategory(ctx context.Context, item *models.Subcategory) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sub_category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category_id",
			"sub_category_name",
		}),
	}).Create(item).Error
}

func (s *Store) EnsureSubcategory(ctx context.Context, item *models.Subcategory) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sub_category_id"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) UpsertOrder(ctx context.Context, item *models.Order) (int64, error) {
	if s == nil || s.db == nil || item == nil {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_order_id"}, {Name: "order_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_finished_date",
			"order_finished_time",
			"finished_at",
			"raw_payload",
		}),
	}).Create(item).Error
	if err != nil {
		return 0, err
	}
	if item.ID != 0 {
		return item.ID, nil
	}
	// The RETURNING clause normally fills the id on both insert and
	// update paths; fall back to the unique key if it did not.
	var existing models.Order
	err = s.db.WithContext(ctx).
		Where("external_order_id = ? AND order_type = ?", item.ExternalOrderID, item.OrderType).
		First(&existing).Error
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

func (s *Store) UpsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "sub_category_id"}, {Name: "grade"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category_id",
			"quantity",
			"total",
			"price",
		}),
	}).Create(item).Error
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Category
	if err := s.db.WithContext(ctx).
		Model(&models.Category{}).
		Order("category_id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Subcategory
	if err := s.db.WithContext(ctx).
		Model(&models.Subcategory{}).
		Order("sub_category_id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// reportFilterSQL is shared by the data and count queries so both see an
// identical row set before grouping. Each filter collapses to TRUE when
// its parameter is NULL.
const reportFilterSQL = `
	WHERE (?::text IS NULL OR oi.category_id = ?::text)
	  AND (?::text IS NULL OR oi.sub_category_id = ?::text)
	  AND (?::text IS NULL OR oi.grade = ?::text)
	  AND (?::text IS NULL OR o.external_order_id ILIKE ?::text)
	  AND (?::text IS NULL OR o.order_finished_date >= ?::date)
	  AND (?::text IS NULL OR o.order_finished_date <= ?::date)`

func reportFilterArgs(params repository.ReportParams) []any {
	orderLike := params.OrderID
	if orderLike != nil {
		pattern := "%" + *orderLike + "%"
		orderLike = &pattern
	}
	args := make([]any, 0, 12)
	for _, p := range []*string{
		params.CategoryID,
		params.SubCategoryID,
		params.Grade,
		orderLike,
		params.StartDate,
		params.EndDate,
	} {
		args = append(args, p, p)
	}
	return args
}

func (s *Store) ReportRows(ctx context.Context, params repository.ReportParams) ([]repository.ReportRow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := `
	WITH filtered AS (
		SELECT oi.sub_category_id, oi.category_id, o.order_type, o.external_order_id,
		       o.order_finished_date, oi.quantity, oi.total
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id` + reportFilterSQL + `
	),
	agg AS (
		SELECT sub_category_id, MIN(category_id) AS category_id,
		       COALESCE(SUM(quantity) FILTER (WHERE order_type = 'buy'), 0)  AS buy_qty,
		       COALESCE(SUM(total)    FILTER (WHERE order_type = 'buy'), 0)  AS buy_total,
		       COALESCE(SUM(quantity) FILTER (WHERE order_type = 'sell'), 0) AS sell_qty,
		       COALESCE(SUM(total)    FILTER (WHERE order_type = 'sell'), 0) AS sell_total
		FROM filtered
		GROUP BY sub_category_id
		HAVING COALESCE(SUM(total) FILTER (WHERE order_type = 'sell'), 0) BETWEEN ? AND ?
	),
	latest AS (
		SELECT DISTINCT ON (sub_category_id) sub_category_id, external_order_id, order_finished_date
		FROM filtered
		ORDER BY sub_category_id, order_finished_date DESC, external_order_id DESC
	)
	SELECT a.sub_category_id, a.category_id, a.buy_qty, a.buy_total, a.sell_qty, a.sell_total,
	       l.external_order_id AS order_id, l.order_finished_date
	FROM agg a
	LEFT JOIN latest l USING (sub_category_id)
	ORDER BY a.sub_category_id
	LIMIT ? OFFSET ?`

	args := reportFilterArgs(params)
	args = append(args, params.MinSellTotal, params.MaxSellTotal, params.Limit, params.Offset)

	var rows []repository.ReportRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) CountReportGroups(ctx context.Context, params repository.ReportParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := `
	WITH filtered AS (
		SELECT oi.sub_category_id, o.order_type, oi.total
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id` + reportFilterSQL + `
	),
	agg AS (
		SELECT sub_category_id
		FROM filtered
		GROUP BY sub_category_id
		HAVING COALESCE(SUM(total) FILTER (WHERE order_type = 'sell'), 0) BETWEEN ? AND ?
	)
	SELECT COUNT(*) FROM agg`

	args := reportFilterArgs(params)
	args = append(args, params.MinSellTotal, params.MaxSellTotal)

	var total int64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
