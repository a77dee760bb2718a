package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/piyawatSritavong/upgrade-order-report/internal/models"
	"github.com/piyawatSritavong/upgrade-order-report/internal/repository"
)

// stubRepo is an in-memory Repository used by the sync and report tests.
// Maps are keyed the same way the real unique constraints are.
type stubRepo struct {
	categories    map[string]models.Category
	subcategories map[string]models.Subcategory
	orders        map[string]*models.Order
	items         map[string]models.OrderItem
	nextOrderID   int64

	reportRows   []repository.ReportRow
	reportTotal  int64
	reportErr    error
	lastParams   repository.ReportParams
	failItemFor  string // grade value whose item upserts should fail
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		categories:    map[string]models.Category{},
		subcategories: map[string]models.Subcategory{},
		orders:        map[string]*models.Order{},
		items:         map[string]models.OrderItem{},
	}
}

func orderKey(externalID, orderType string) string {
	return externalID + "|" + orderType
}

func itemKey(orderID int64, subID, grade string) string {
	return fmt.Sprintf("%d|%s|%s", orderID, subID, grade)
}

func (r *stubRepo) UpsertCategory(ctx context.Context, item *models.Category) error {
	r.categories[item.CategoryID] = *item
	return nil
}

func (r *stubRepo) EnsureCategory(ctx context.Context, item *models.Category) error {
	if _, ok := r.categories[item.CategoryID]; !ok {
		r.categories[item.CategoryID] = *item
	}
	return nil
}

func (r *stubRepo) UpsertSubcategory(ctx context.Context, item *models.Subcategory) error {
	r.subcategories[item.SubcategoryID] = *item
	return nil
}

func (r *stubRepo) EnsureSubcategory(ctx context.Context, item *models.Subcategory) error {
	if _, ok := r.subcategories[item.SubcategoryID]; !ok {
		r.subcategories[item.SubcategoryID] = *item
	}
	return nil
}

func (r *stubRepo) UpsertOrder(ctx context.Context, item *models.Order) (int64, error) {
	key := orderKey(item.ExternalOrderID, item.OrderType)
	if existing, ok := r.orders[key]; ok {
		item.ID = existing.ID
		r.orders[key] = item
		return existing.ID, nil
	}
	r.nextOrderID++
	item.ID = r.nextOrderID
	r.orders[key] = item
	return item.ID, nil
}

func (r *stubRepo) UpsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	if r.failItemFor != "" && item.Grade == r.failItemFor {
		return errors.New("induced item failure")
	}
	r.items[itemKey(item.OrderID, item.SubcategoryID, item.Grade)] = *item
	return nil
}

func (r *stubRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubRepo) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	out := make([]models.Subcategory, 0, len(r.subcategories))
	for _, s := range r.subcategories {
		out = append(out, s)
	}
	return out, nil
}

func (r *stubRepo) ReportRows(ctx context.Context, params repository.ReportParams) ([]repository.ReportRow, error) {
	r.lastParams = params
	if r.reportErr != nil {
		return nil, r.reportErr
	}
	return r.reportRows, nil
}

func (r *stubRepo) CountReportGroups(ctx context.Context, params repository.ReportParams) (int64, error) {
	if r.reportErr != nil {
		return 0, r.reportErr
	}
	return r.reportTotal, nil
}
