package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/piyawatSritavong/upgrade-order-report/internal/models"
	"github.com/piyawatSritavong/upgrade-order-report/internal/repository"
	"github.com/piyawatSritavong/upgrade-order-report/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixedRepo serves a canned report page; writes are not used by these tests.
type fixedRepo struct {
	rows       []repository.ReportRow
	total      int64
	lastParams repository.ReportParams
}

func (r *fixedRepo) UpsertCategory(ctx context.Context, item *models.Category) error    { return nil }
func (r *fixedRepo) EnsureCategory(ctx context.Context, item *models.Category) error    { return nil }
func (r *fixedRepo) UpsertSubcategory(ctx context.Context, item *models.Subcategory) error {
	return nil
}
func (r *fixedRepo) EnsureSubcategory(ctx context.Context, item *models.Subcategory) error {
	return nil
}
func (r *fixedRepo) UpsertOrder(ctx context.Context, item *models.Order) (int64, error) { return 0, nil }
func (r *fixedRepo) UpsertOrderItem(ctx context.Context, item *models.OrderItem) error  { return nil }
func (r *fixedRepo) ListCategories(ctx context.Context) ([]models.Category, error)      { return nil, nil }
func (r *fixedRepo) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	return nil, nil
}

func (r *fixedRepo) ReportRows(ctx context.Context, params repository.ReportParams) ([]repository.ReportRow, error) {
	r.lastParams = params
	return r.rows, nil
}

func (r *fixedRepo) CountReportGroups(ctx context.Context, params repository.ReportParams) (int64, error) {
	return r.total, nil
}

func newReportRouter(repo repository.Repository) *gin.Engine {
	r := gin.New()
	h := &ReportHandler{Service: &service.ReportService{Store: repo}}
	h.Register(r)
	return r
}

func getContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/orders?"+rawQuery, nil)
	c.Request = req
	return c
}

func TestParseReportQueryDefaults(t *testing.T) {
	h := &ReportHandler{}
	q, err := h.parseReportQuery(getContext(t, ""))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if q.Limit != 10 || q.Page != 1 {
		t.Fatalf("limit=%d page=%d", q.Limit, q.Page)
	}
	if !q.MinSellTotal.IsZero() {
		t.Fatalf("minSellTotal=%s", q.MinSellTotal)
	}
	if !q.MaxSellTotal.Equal(maxSellTotalUnbounded) {
		t.Fatalf("maxSellTotal=%s", q.MaxSellTotal)
	}
	if q.CategoryID != nil || q.Grade != nil || q.OrderID != nil {
		t.Fatalf("filters not nil: %+v", q)
	}
}

func TestParseReportQueryBounds(t *testing.T) {
	h := &ReportHandler{}
	bad := []string{
		"limit=0",
		"limit=200",
		"limit=abc",
		"page=0",
		"page=x",
		"minSellTotal=-5",
		"maxSellTotal=-1",
		"minSellTotal=high",
	}
	for _, raw := range bad {
		if _, err := h.parseReportQuery(getContext(t, raw)); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}

	q, err := h.parseReportQuery(getContext(t, "limit=100&page=7&minSellTotal=1.5&maxSellTotal=99"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if q.Limit != 100 || q.Page != 7 {
		t.Fatalf("limit=%d page=%d", q.Limit, q.Page)
	}
	if !q.MinSellTotal.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("minSellTotal=%s", q.MinSellTotal)
	}
	if !q.MaxSellTotal.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("maxSellTotal=%s", q.MaxSellTotal)
	}
}

func TestParseReportQueryTrimsFilters(t *testing.T) {
	h := &ReportHandler{}
	q, err := h.parseReportQuery(getContext(t, "categoryId=%201%20&grade=&orderId=OR"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if q.CategoryID == nil || *q.CategoryID != "1" {
		t.Fatalf("categoryId=%v", q.CategoryID)
	}
	if q.Grade != nil {
		t.Fatalf("blank grade should be nil, got %q", *q.Grade)
	}
	if q.OrderID == nil || *q.OrderID != "OR" {
		t.Fatalf("orderId=%v", q.OrderID)
	}
}

func TestGetOrdersBadParamIs400(t *testing.T) {
	r := newReportRouter(&fixedRepo{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?limit=1000", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetOrdersReturnsPage(t *testing.T) {
	repo := &fixedRepo{
		rows: []repository.ReportRow{{
			SubCategoryID: "S1",
			CategoryID:    "1",
			BuyQty:        decimal.NewFromInt(3),
			BuyTotal:      decimal.NewFromInt(30),
			SellQty:       decimal.NewFromInt(1),
			SellTotal:     decimal.NewFromInt(12),
		}},
		total: 1,
	}
	r := newReportRouter(repo)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?page=2&limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}

	var page service.ReportPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.CurrentPage != 2 || page.TotalItems != 1 {
		t.Fatalf("page=%+v", page)
	}
	if len(page.Data) != 1 || page.Data[0].StockBalance != 2 || page.Data[0].MoneyBalance != 18 {
		t.Fatalf("data=%+v", page.Data)
	}
	if repo.lastParams.Offset != 5 {
		t.Fatalf("offset=%d want 5", repo.lastParams.Offset)
	}
}
