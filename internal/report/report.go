package report

import (
	"slices"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTopLimit is how many products the ranking shows
	DefaultTopLimit = 5

	firstYear = 2024
)

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Summary aggregates the money moved by a set of sales
type Summary struct {
	Revenue     decimal.Decimal `json:"revenue"`
	Investment  decimal.Decimal `json:"investment"`
	Profit      decimal.Decimal `json:"profit"`
	BaseRevenue decimal.Decimal `json:"baseRevenue"`
	Discount    decimal.Decimal `json:"discount"`
	Count       int             `json:"count"`
}

// Add combines two summaries field by field
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Revenue:     s.Revenue.Add(other.Revenue),
		Investment:  s.Investment.Add(other.Investment),
		Profit:      s.Profit.Add(other.Profit),
		BaseRevenue: s.BaseRevenue.Add(other.BaseRevenue),
		Discount:    s.Discount.Add(other.Discount),
		Count:       s.Count + other.Count,
	}
}

// Equal compares summaries by value
func (s Summary) Equal(other Summary) bool {
	return s.Revenue.Equal(other.Revenue) &&
		s.Investment.Equal(other.Investment) &&
		s.Profit.Equal(other.Profit) &&
		s.BaseRevenue.Equal(other.BaseRevenue) &&
		s.Discount.Equal(other.Discount) &&
		s.Count == other.Count
}

// MonthlyPoint is the revenue of one calendar month
type MonthlyPoint struct {
	Month time.Month      `json:"month"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// ProductRanking is the quantity sold of one product
type ProductRanking struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// PaymentBreakdown totals the sales paid with one method
type PaymentBreakdown struct {
	Method  domain.PaymentMethod `json:"method"`
	Label   string               `json:"label"`
	Count   int                  `json:"count"`
	Revenue decimal.Decimal      `json:"revenue"`
}

// MonthlyReport is everything the reports view shows for a period
type MonthlyReport struct {
	Month       time.Month         `json:"month"`
	Year        int                `json:"year"`
	Summary     Summary            `json:"summary"`
	Series      []MonthlyPoint     `json:"series"`
	TopProducts []ProductRanking   `json:"topProducts"`
	Payments    []PaymentBreakdown `json:"payments"`
}

// InPeriod reports whether t falls in the given calendar month and year of loc
func InPeriod(t time.Time, month time.Month, year int, loc *time.Location) bool {
	local := t.In(loc)
	return local.Month() == month && local.Year() == year
}

// FilterByPeriod returns the sales dated in the given month and year
func FilterByPeriod(sales []domain.Sale, month time.Month, year int, loc *time.Location) []domain.Sale {
	filtered := []domain.Sale{}
	for _, sale := range sales {
		if InPeriod(sale.Date, month, year, loc) {
			filtered = append(filtered, sale)
		}
	}
	return filtered
}

// ComputeSummary sums revenue and cost of the given sales
func ComputeSummary(sales []domain.Sale) Summary {
	summary := Summary{
		Revenue:     decimal.Zero,
		Investment:  decimal.Zero,
		BaseRevenue: decimal.Zero,
	}
	for _, sale := range sales {
		summary.Revenue = summary.Revenue.Add(sale.TotalPrice)
		summary.Investment = summary.Investment.Add(sale.TotalCost)
		summary.BaseRevenue = summary.BaseRevenue.Add(sale.TotalBasePrice)
	}
	summary.Profit = summary.Revenue.Sub(summary.Investment)
	summary.Discount = summary.BaseRevenue.Sub(summary.Revenue)
	summary.Count = len(sales)
	return summary
}

// ComputeMonthlySeries returns twelve points, January to December, with the
// revenue of each month of year. Months without sales are zero.
func ComputeMonthlySeries(sales []domain.Sale, year int, loc *time.Location) []MonthlyPoint {
	series := make([]MonthlyPoint, 12)
	for i := range series {
		series[i] = MonthlyPoint{
			Month: time.Month(i + 1),
			Label: monthLabels[i],
			Total: decimal.Zero,
		}
	}

	for _, sale := range sales {
		local := sale.Date.In(loc)
		if local.Year() != year {
			continue
		}
		point := &series[local.Month()-1]
		point.Total = point.Total.Add(sale.TotalPrice)
	}
	return series
}

// ComputeTopProducts ranks products by quantity sold. Each product is labelled
// with the first name seen for it, and ties keep the order in which products
// were first seen.
func ComputeTopProducts(sales []domain.Sale, limit int) []ProductRanking {
	index := map[string]int{}
	rankings := []ProductRanking{}

	for _, sale := range sales {
		i, ok := index[sale.ProductID]
		if !ok {
			i = len(rankings)
			index[sale.ProductID] = i
			rankings = append(rankings, ProductRanking{ProductID: sale.ProductID, ProductName: sale.ProductName})
		}
		rankings[i].Quantity += sale.Quantity
	}

	slices.SortStableFunc(rankings, func(a, b ProductRanking) int {
		return b.Quantity - a.Quantity
	})

	if limit >= 0 && len(rankings) > limit {
		rankings = rankings[:limit]
	}
	return rankings
}

// ComputePaymentBreakdown totals sales per payment method, in display order
func ComputePaymentBreakdown(sales []domain.Sale) []PaymentBreakdown {
	breakdown := make([]PaymentBreakdown, len(domain.PaymentMethods))
	for i, method := range domain.PaymentMethods {
		breakdown[i] = PaymentBreakdown{Method: method, Label: method.Label(), Revenue: decimal.Zero}
	}

	for _, sale := range sales {
		i := slices.Index(domain.PaymentMethods, sale.PaymentMethod)
		if i < 0 {
			continue
		}
		breakdown[i].Count++
		breakdown[i].Revenue = breakdown[i].Revenue.Add(sale.TotalPrice)
	}
	return breakdown
}

// BuildMonthlyReport assembles the reports view for month and year
func BuildMonthlyReport(sales []domain.Sale, month time.Month, year int, loc *time.Location) MonthlyReport {
	filtered := FilterByPeriod(sales, month, year, loc)
	return MonthlyReport{
		Month:       month,
		Year:        year,
		Summary:     ComputeSummary(filtered),
		Series:      ComputeMonthlySeries(sales, year, loc),
		TopProducts: ComputeTopProducts(filtered, DefaultTopLimit),
		Payments:    ComputePaymentBreakdown(filtered),
	}
}

// SortByDateDesc returns the sales ordered newest first
func SortByDateDesc(sales []domain.Sale) []domain.Sale {
	sorted := append([]domain.Sale{}, sales...)
	slices.SortStableFunc(sorted, func(a, b domain.Sale) int {
		return b.Date.Compare(a.Date)
	})
	return sorted
}

// AvailableYears lists the years offered by the period picker
func AvailableYears(now time.Time) []int {
	years := []int{}
	for y := firstYear; y <= now.Year()+1; y++ {
		years = append(years, y)
	}
	return years
}
