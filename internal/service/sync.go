package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/piyawatSritavong/upgrade-order-report/internal/client/recycle"
	"github.com/piyawatSritavong/upgrade-order-report/internal/models"
	"github.com/piyawatSritavong/upgrade-order-report/internal/repository"
)

const (
	syntheticSubcategoryPrefix = "NONE-"
	defaultGrade               = "general"
	unspecifiedSubcategoryName = "Unspecified subcategory"
	unnamedSubcategoryName     = "Unnamed subcategory"
)

// SyncService reconciles the external recycle feeds into the store.
// Both procedures are idempotent: every write converges on a unique key,
// so re-running a partially completed cycle repairs it.
type SyncService struct {
	Store  repository.Repository
	Feeds  *recycle.Client
	Logger *zap.Logger
}

type SyncResult struct {
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
	Orders        int `json:"orders"`
	Items         int `json:"items"`
	SkippedGroups int `json:"skipped_groups"`
	ItemErrors    int `json:"item_errors"`
}

func (r *SyncResult) add(other SyncResult) {
	r.Categories += other.Categories
	r.Subcategories += other.Subcategories
	r.Orders += other.Orders
	r.Items += other.Items
	r.SkippedGroups += other.SkippedGroups
	r.ItemErrors += other.ItemErrors
}

// SyncAll runs the category sync followed by the order sync. The two are
// causally independent; a failure in one does not stop the other, and
// both outcomes are reported together.
func (s *SyncService) SyncAll(ctx context.Context) (SyncResult, error) {
	result := SyncResult{}

	catResult, catErr := s.SyncCategories(ctx)
	result.add(catResult)
	if catErr != nil {
		s.warn("category sync failed", zap.Error(catErr))
	}

	orderResult, orderErr := s.SyncOrders(ctx)
	result.add(orderResult)
	if orderErr != nil {
		s.warn("order sync failed", zap.Error(orderErr))
	}

	return result, errors.Join(catErr, orderErr)
}

// SyncCategories upserts the category feed: every category row, one
// synthetic "unspecified" subcategory per category, and every declared
// subcategory that carries an id.
func (s *SyncService) SyncCategories(ctx context.Context) (SyncResult, error) {
	if s.Feeds == nil {
		return SyncResult{}, errors.New("feed client is nil")
	}
	result := SyncResult{}

	body, err := s.Feeds.GetCategoriesRaw(ctx)
	if err != nil {
		return result, err
	}
	parsed, err := recycle.ParseCategoryResponse(body)
	if err != nil {
		// Schema mismatch skips this feed for the cycle; it is not a
		// failure of the run.
		s.warn("category feed validation failed", zap.Error(err))
		return result, nil
	}

	for _, c := range parsed.ProductList {
		categoryID := c.CategoryID.String()
		if err := s.Store.UpsertCategory(ctx, &models.Category{
			CategoryID:   categoryID,
			CategoryName: c.CategoryName,
		}); err != nil {
			return result, err
		}
		result.Categories++

		if err := s.Store.EnsureSubcategory(ctx, &models.Subcategory{
			SubcategoryID:   syntheticSubcategoryID(categoryID),
			CategoryID:      categoryID,
			SubcategoryName: unspecifiedSubcategoryName,
		}); err != nil {
			return result, err
		}

		for _, sub := range c.Subcategories {
			subID := sub.SubcategoryID.String()
			if subID == "" {
				continue
			}
			name := sub.SubcategoryName
			if name == "" {
				name = unnamedSubcategoryName
			}
			if err := s.Store.UpsertSubcategory(ctx, &models.Subcategory{
				SubcategoryID:   subID,
				CategoryID:      categoryID,
				SubcategoryName: name,
			}); err != nil {
				return result, err
			}
			result.Subcategories++
		}
	}

	s.info("categories synchronized",
		zap.Int("categories", result.Categories),
		zap.Int("subcategories", result.Subcategories),
	)
	return result, nil
}

// SyncOrders upserts the buy and sell transaction feeds. Ingestion is
// best-effort: a bad group or item is logged and skipped, never allowed
// to abort its siblings.
func (s *SyncService) SyncOrders(ctx context.Context) (SyncResult, error) {
	if s.Feeds == nil {
		return SyncResult{}, errors.New("feed client is nil")
	}
	result := SyncResult{}

	body, err := s.Feeds.GetTransactionsRaw(ctx)
	if err != nil {
		return result, err
	}
	parsed, err := recycle.ParseTransactionResponse(body)
	if err != nil {
		s.warn("transaction feed validation failed", zap.Error(err))
		return result, nil
	}

	for _, tx := range parsed.BuyTransaction {
		s.upsertOrderAndItems(ctx, tx, models.OrderTypeBuy, &result)
	}
	for _, tx := range parsed.SellTransaction {
		s.upsertOrderAndItems(ctx, tx, models.OrderTypeSell, &result)
	}

	s.info("orders synchronized",
		zap.Int("orders", result.Orders),
		zap.Int("items", result.Items),
		zap.Int("skipped_groups", result.SkippedGroups),
		zap.Int("item_errors", result.ItemErrors),
	)
	return result, nil
}

func (s *SyncService) upsertOrderAndItems(ctx context.Context, tx recycle.Transaction, orderType string, result *SyncResult) {
	dateOnly := recycle.DateOnly(tx.OrderFinishedDate)
	timeOnly := recycle.TimeOnly(tx.OrderFinishedTime)
	finishedAt := finishedAtOrNow(dateOnly, timeOnly)

	order := &models.Order{
		ExternalOrderID:   tx.OrderID.String(),
		OrderType:         orderType,
		OrderFinishedDate: strPtr(dateOnly),
		OrderFinishedTime: strPtr(timeOnly),
		FinishedAt:        &finishedAt,
		RawPayload:        mustJSON(tx),
	}
	orderID, err := s.Store.UpsertOrder(ctx, order)
	if err != nil {
		s.warn("order upsert failed",
			zap.String("external_order_id", tx.OrderID.String()),
			zap.String("order_type", orderType),
			zap.Error(err),
		)
		result.ItemErrors++
		return
	}
	result.Orders++
	if orderID == 0 {
		// Should not happen; without a row id the items cannot be keyed.
		s.warn("order upsert returned no id, skipping items",
			zap.String("external_order_id", tx.OrderID.String()),
			zap.String("order_type", orderType),
		)
		return
	}

	for _, group := range tx.RequestList {
		categoryID := group.CategoryID.String()
		if categoryID == "" {
			s.warn("skipping request group: missing category id",
				zap.String("external_order_id", tx.OrderID.String()),
			)
			result.SkippedGroups++
			continue
		}
		subcategoryID := normalizeSubcategoryID(group.SubcategoryID.String(), categoryID)

		// The feed regularly references categories the category feed has
		// never declared. Storing the transaction under a placeholder
		// bucket beats dropping it.
		if err := s.ensureParents(ctx, categoryID, subcategoryID); err != nil {
			s.warn("failed to ensure parent rows",
				zap.String("category_id", categoryID),
				zap.String("sub_category_id", subcategoryID),
				zap.Error(err),
			)
		}

		for _, line := range group.RequestList {
			grade := defaultGrade
			if line.Grade != nil && *line.Grade != "" {
				grade = *line.Grade
			}
			price := recycle.ToDecimal(line.Price)
			item := &models.OrderItem{
				OrderID:       orderID,
				CategoryID:    categoryID,
				SubcategoryID: subcategoryID,
				Grade:         grade,
				Quantity:      recycle.ToDecimal(line.Quantity),
				Total:         recycle.ToDecimal(line.Total),
				Price:         &price,
			}
			if err := s.Store.UpsertOrderItem(ctx, item); err != nil {
				s.warn("order item upsert failed",
					zap.String("external_order_id", tx.OrderID.String()),
					zap.String("sub_category_id", subcategoryID),
					zap.String("grade", grade),
					zap.Error(err),
				)
				result.ItemErrors++
				continue
			}
			result.Items++
		}
	}
}

func (s *SyncService) ensureParents(ctx context.Context, categoryID, subcategoryID string) error {
	if err := s.Store.EnsureCategory(ctx, &models.Category{
		CategoryID:   categoryID,
		CategoryName: "Fallback category (" + categoryID + ")",
	}); err != nil {
		return err
	}
	return s.Store.EnsureSubcategory(ctx, &models.Subcategory{
		SubcategoryID:   subcategoryID,
		CategoryID:      categoryID,
		SubcategoryName: "Fallback subcategory (" + subcategoryID + ")",
	})
}

func syntheticSubcategoryID(categoryID string) string {
	return syntheticSubcategoryPrefix + categoryID
}

func normalizeSubcategoryID(subcategoryID, categoryID string) string {
	// The feed sometimes serializes missing ids as the literal strings
	// "undefined" or "null".
	if subcategoryID == "" || subcategoryID == "undefined" || subcategoryID == "null" {
		return syntheticSubcategoryID(categoryID)
	}
	return subcategoryID
}

// finishedAtOrNow combines a valid date and time into a timestamp. With
// either part missing the processing time is used instead; downstream
// latest-order ordering depends on this exact fallback.
func finishedAtOrNow(dateOnly, timeOnly string) time.Time {
	if dateOnly != "" && timeOnly != "" {
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", dateOnly+"T"+timeOnly, time.Local); err == nil {
			return t
		}
	}
	return time.Now()
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mustJSON(v any) datatypes.JSON {
	payload, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(payload)
}

func (s *SyncService) warn(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Warn(msg, fields...)
	}
}

func (s *SyncService) info(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Info(msg, fields...)
	}
}
