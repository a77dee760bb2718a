package service

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/piyawatSritavong/upgrade-order-report/internal/repository"
)

// ReportService shapes aggregated subcategory groups into the dashboard
// contract: derived balances plus 1-based pagination math.
type ReportService struct {
	Store repository.Repository
}

type ReportQuery struct {
	Limit         int
	Page          int
	CategoryID    *string
	SubCategoryID *string
	StartDate     *string
	EndDate       *string
	OrderID       *string
	Grade         *string
	MinSellTotal  decimal.Decimal
	MaxSellTotal  decimal.Decimal
}

type ReportRow struct {
	SubCategoryID     string  `json:"subCategoryId"`
	CategoryID        string  `json:"categoryId"`
	BuyQty            float64 `json:"buyQty"`
	BuyTotal          float64 `json:"buyTotal"`
	SellQty           float64 `json:"sellQty"`
	SellTotal         float64 `json:"sellTotal"`
	StockBalance      float64 `json:"stockBalance"`
	MoneyBalance      float64 `json:"moneyBalance"`
	OrderID           *string `json:"orderId,omitempty"`
	OrderFinishedDate *string `json:"orderFinishedDate,omitempty"`
}

type ReportPage struct {
	Data        []ReportRow `json:"data"`
	TotalItems  int64       `json:"totalItems"`
	TotalPages  int64       `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
}

func (s *ReportService) GetReport(ctx context.Context, q ReportQuery) (ReportPage, error) {
	params := repository.ReportParams{
		CategoryID:    q.CategoryID,
		SubCategoryID: q.SubCategoryID,
		Grade:         q.Grade,
		OrderID:       q.OrderID,
		StartDate:     q.StartDate,
		EndDate:       q.EndDate,
		MinSellTotal:  q.MinSellTotal,
		MaxSellTotal:  q.MaxSellTotal,
		Limit:         q.Limit,
		Offset:        (q.Page - 1) * q.Limit,
	}

	var (
		rows  []repository.ReportRow
		total int64
	)
	// The page and the group count are independent reads.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.Store.ReportRows(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.Store.CountReportGroups(gctx, params)
		return err
	})
	if err := g.Wait(); err != nil {
		return ReportPage{}, err
	}

	data := make([]ReportRow, 0, len(rows))
	for _, r := range rows {
		row := ReportRow{
			SubCategoryID: r.SubCategoryID,
			CategoryID:    r.CategoryID,
			BuyQty:        r.BuyQty.InexactFloat64(),
			BuyTotal:      r.BuyTotal.InexactFloat64(),
			SellQty:       r.SellQty.InexactFloat64(),
			SellTotal:     r.SellTotal.InexactFloat64(),
			StockBalance:  r.BuyQty.Sub(r.SellQty).InexactFloat64(),
			MoneyBalance:  r.BuyTotal.Sub(r.SellTotal).InexactFloat64(),
			OrderID:       r.OrderID,
		}
		if r.OrderFinishedDate != nil {
			formatted := r.OrderFinishedDate.Format("2006-01-02")
			row.OrderFinishedDate = &formatted
		}
		data = append(data, row)
	}

	totalPages := int64(0)
	if q.Limit > 0 {
		totalPages = (total + int64(q.Limit) - 1) / int64(q.Limit)
	}

	return ReportPage{
		Data:        data,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: q.Page,
	}, nil
}

type CategoryListing struct {
	CategoryID    string               `json:"categoryId"`
	CategoryName  string               `json:"categoryName"`
	Subcategories []SubcategoryListing `json:"subcategories"`
}

type SubcategoryListing struct {
	SubcategoryID   string `json:"subcategoryId"`
	SubcategoryName string `json:"subcategoryName"`
}

// GetCategories returns every category with its subcategories grouped
// under it, both ordered by id.
func (s *ReportService) GetCategories(ctx context.Context) ([]CategoryListing, error) {
	cats, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.Store.ListSubcategories(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]SubcategoryListing, len(cats))
	for _, sub := range subs {
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], SubcategoryListing{
			SubcategoryID:   sub.SubcategoryID,
			SubcategoryName: sub.SubcategoryName,
		})
	}

	out := make([]CategoryListing, 0, len(cats))
	for _, c := range cats {
		listing := CategoryListing{
			CategoryID:    c.CategoryID,
			CategoryName:  c.CategoryName,
			Subcategories: byCategory[c.CategoryID],
		}
		if listing.Subcategories == nil {
			listing.Subcategories = []SubcategoryListing{}
		}
		out = append(out, listing)
	}
	return out, nil
}
