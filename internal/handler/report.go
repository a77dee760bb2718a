package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/piyawatSritavong/upgrade-order-report/internal/service"
)

// maxSellTotalUnbounded stands in for "no upper bound" so the sell-total
// range check stays a plain BETWEEN in the aggregation query.
var maxSellTotalUnbounded = decimal.NewFromInt(9007199254740991)

type ReportHandler struct {
	Service      *service.ReportService
	Logger       *zap.Logger
	DefaultLimit int
	MaxLimit     int
}

func (h *ReportHandler) Register(r *gin.Engine) {
	r.GET("/orders", h.getOrders)
	r.GET("/categories", h.listCategories)
}

// @Summary Aggregated stock report grouped by subcategory
// @Tags report
// @Param limit query int false "page size (1-100)"
// @Param page query int false "1-based page"
// @Param categoryId query string false "exact category id"
// @Param subCategoryId query string false "exact subcategory id"
// @Param startDate query string false "inclusive finished-date lower bound (YYYY-MM-DD)"
// @Param endDate query string false "inclusive finished-date upper bound (YYYY-MM-DD)"
// @Param orderId query string false "external order id substring"
// @Param grade query string false "exact grade"
// @Param minSellTotal query number false "minimum aggregated sell total"
// @Param maxSellTotal query number false "maximum aggregated sell total"
// @Router /orders [get]
func (h *ReportHandler) getOrders(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service unavailable"})
		return
	}
	query, err := h.parseReportQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.Service.GetReport(c.Request.Context(), query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("report query failed", zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Summary List categories with their subcategories
// @Tags report
// @Router /categories [get]
func (h *ReportHandler) listCategories(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service unavailable"})
		return
	}
	data, err := h.Service.GetCategories(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("category listing failed", zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *ReportHandler) parseReportQuery(c *gin.Context) (service.ReportQuery, error) {
	defaultLimit := h.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	maxLimit := h.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 100
	}

	limit, err := intQueryChecked(c, "limit", defaultLimit, 1, maxLimit)
	if err != nil {
		return service.ReportQuery{}, err
	}
	page, err := intQueryChecked(c, "page", 1, 1, 0)
	if err != nil {
		return service.ReportQuery{}, err
	}
	minSell, err := decimalQueryChecked(c, "minSellTotal", decimal.Zero)
	if err != nil {
		return service.ReportQuery{}, err
	}
	maxSell, err := decimalQueryChecked(c, "maxSellTotal", maxSellTotalUnbounded)
	if err != nil {
		return service.ReportQuery{}, err
	}

	return service.ReportQuery{
		Limit:         limit,
		Page:          page,
		CategoryID:    strQueryPtr(c, "categoryId"),
		SubCategoryID: strQueryPtr(c, "subCategoryId"),
		StartDate:     strQueryPtr(c, "startDate"),
		EndDate:       strQueryPtr(c, "endDate"),
		OrderID:       strQueryPtr(c, "orderId"),
		Grade:         strQueryPtr(c, "grade"),
		MinSellTotal:  minSell,
		MaxSellTotal:  maxSell,
	}, nil
}

// intQueryChecked parses an integer query param with a default and an
// inclusive [min, max] range; max <= 0 means no upper bound.
func intQueryChecked(c *gin.Context, key string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if val < min {
		return 0, fmt.Errorf("%s must be >= %d", key, min)
	}
	if max > 0 && val > max {
		return 0, fmt.Errorf("%s must be <= %d", key, max)
	}
	return val, nil
}

func decimalQueryChecked(c *gin.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	val, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", key)
	}
	if val.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must be >= 0", key)
	}
	return val, nil
}

func strQueryPtr(c *gin.Context, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}
