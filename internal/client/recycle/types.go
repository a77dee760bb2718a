package recycle

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexString accepts a JSON string or number and normalizes it to its
// string form. The feed is inconsistent about which one it sends for
// identifiers and amounts. A JSON null decodes to the empty string.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = FlexString(num.String())
		return nil
	}
	return fmt.Errorf("invalid string-or-number value: %s", string(b))
}

func (s FlexString) String() string {
	return string(s)
}

type CategoryResponse struct {
	ProductList []CategoryEntry `json:"productList"`
}

type CategoryEntry struct {
	CategoryID    FlexString         `json:"categoryId"`
	CategoryName  string             `json:"categoryName"`
	Subcategories []SubcategoryEntry `json:"subcategories"`
}

type SubcategoryEntry struct {
	SubcategoryID   FlexString `json:"subcategoryId"`
	SubcategoryName string     `json:"subcategoryName"`
}

type TransactionResponse struct {
	BuyTransaction  []Transaction `json:"buyTransaction"`
	SellTransaction []Transaction `json:"sellTransaction"`
}

type Transaction struct {
	OrderID           FlexString     `json:"orderId"`
	OrderFinishedDate *string        `json:"orderFinishedDate"`
	OrderFinishedTime *string        `json:"orderFinishedTime"`
	RequestList       []RequestGroup `json:"requestList"`
}

type RequestGroup struct {
	CategoryID    FlexString  `json:"categoryID"`
	SubcategoryID FlexString  `json:"subCategoryID"`
	RequestList   []GradeLine `json:"requestList"`
}

type GradeLine struct {
	Grade    *string    `json:"grade"`
	Quantity FlexString `json:"quantity"`
	Total    FlexString `json:"total"`
	Price    FlexString `json:"price"`
}

func ParseCategoryResponse(body []byte) (*CategoryResponse, error) {
	var resp CategoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid category feed: %w", err)
	}
	return &resp, nil
}

func ParseTransactionResponse(body []byte) (*TransactionResponse, error) {
	var resp TransactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid transaction feed: %w", err)
	}
	return &resp, nil
}

var (
	datePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	timePrefixRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}`)
)

// DateOnly truncates a feed timestamp to its YYYY-MM-DD prefix.
// Malformed or absent values yield "".
func DateOnly(v *string) string {
	if v == nil {
		return ""
	}
	return datePrefixRe.FindString(*v)
}

// TimeOnly truncates a feed timestamp to its HH:MM:SS prefix.
// Malformed or absent values yield "".
func TimeOnly(v *string) string {
	if v == nil {
		return ""
	}
	return timePrefixRe.FindString(*v)
}

// ToDecimal coerces a feed value to a finite decimal with a zero
// fallback, so nothing non-numeric ever reaches storage.
func ToDecimal(v FlexString) decimal.Decimal {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
