package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piyawatSritavong/upgrade-order-report/internal/models"
	"github.com/piyawatSritavong/upgrade-order-report/internal/repository"
)

func TestGetReport_Balances(t *testing.T) {
	store := newStubRepo()
	store.reportRows = []repository.ReportRow{{
		SubCategoryID: "S1",
		CategoryID:    "1",
		BuyQty:        decimal.NewFromInt(10),
		BuyTotal:      decimal.NewFromInt(100),
		SellQty:       decimal.NewFromInt(4),
		SellTotal:     decimal.NewFromInt(50),
	}}
	store.reportTotal = 1

	svc := &ReportService{Store: store}
	page, err := svc.GetReport(context.Background(), ReportQuery{Limit: 10, Page: 1})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("data=%d want 1", len(page.Data))
	}
	row := page.Data[0]
	if row.BuyQty != 10 || row.BuyTotal != 100 || row.SellQty != 4 || row.SellTotal != 50 {
		t.Fatalf("sums=%+v", row)
	}
	if row.StockBalance != 6 {
		t.Fatalf("stockBalance=%v want 6", row.StockBalance)
	}
	if row.MoneyBalance != 50 {
		t.Fatalf("moneyBalance=%v want 50", row.MoneyBalance)
	}
}

func TestGetReport_Pagination(t *testing.T) {
	store := newStubRepo()
	store.reportTotal = 25

	svc := &ReportService{Store: store}
	page, err := svc.GetReport(context.Background(), ReportQuery{Limit: 10, Page: 3})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if page.TotalPages != 3 {
		t.Fatalf("totalPages=%d want 3", page.TotalPages)
	}
	if page.TotalItems != 25 {
		t.Fatalf("totalItems=%d", page.TotalItems)
	}
	if page.CurrentPage != 3 {
		t.Fatalf("currentPage=%d", page.CurrentPage)
	}
	if store.lastParams.Offset != 20 {
		t.Fatalf("offset=%d want 20", store.lastParams.Offset)
	}
	if page.Data == nil {
		t.Fatalf("data must not be nil")
	}
}

func TestGetReport_LatestOrderDateFormatting(t *testing.T) {
	store := newStubRepo()
	orderID := "ORD-9"
	finished := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	store.reportRows = []repository.ReportRow{{
		SubCategoryID:     "S1",
		CategoryID:        "1",
		OrderID:           &orderID,
		OrderFinishedDate: &finished,
	}}
	store.reportTotal = 1

	svc := &ReportService{Store: store}
	page, err := svc.GetReport(context.Background(), ReportQuery{Limit: 10, Page: 1})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	row := page.Data[0]
	if row.OrderID == nil || *row.OrderID != "ORD-9" {
		t.Fatalf("orderId=%v", row.OrderID)
	}
	if row.OrderFinishedDate == nil || *row.OrderFinishedDate != "2026-02-01" {
		t.Fatalf("orderFinishedDate=%v", row.OrderFinishedDate)
	}
}

func TestGetCategories_GroupsSubcategories(t *testing.T) {
	store := newStubRepo()
	srv := &ReportService{Store: store}

	ctx := context.Background()
	if err := store.UpsertCategory(ctx, &models.Category{CategoryID: "1", CategoryName: "Metal"}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertCategory(ctx, &models.Category{CategoryID: "2", CategoryName: "Plastic"}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertSubcategory(ctx, &models.Subcategory{SubcategoryID: "S1", CategoryID: "1", SubcategoryName: "Copper"}); err != nil {
		t.Fatal(err)
	}

	out, err := srv.GetCategories(ctx)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(out) != 2 {
		t.Fatalf("categories=%d want 2", len(out))
	}
	for _, c := range out {
		if c.Subcategories == nil {
			t.Fatalf("subcategories must not be nil for %s", c.CategoryID)
		}
		switch c.CategoryID {
		case "1":
			if len(c.Subcategories) != 1 || c.Subcategories[0].SubcategoryID != "S1" {
				t.Fatalf("category 1 subs=%+v", c.Subcategories)
			}
		case "2":
			if len(c.Subcategories) != 0 {
				t.Fatalf("category 2 subs=%+v", c.Subcategories)
			}
		}
	}
}
