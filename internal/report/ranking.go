package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/talkincode/stockboard/internal/domain"
)

// ProfitEntry is one bar of the profit chart.
type ProfitEntry struct {
	RecordID    string          `json:"recordId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Profit      domain.Money    `json:"profit"`
	Percent     decimal.Decimal `json:"percent"`
}

// ProfitRanking keeps records with a positive profit, highest first,
// each with its share of the top profit as a percentage.
func ProfitRanking(records []domain.DailyRecord) []ProfitEntry {
	items := make([]ProfitEntry, 0, len(records))
	for _, r := range records {
		if !r.Profit.IsPositive() {
			continue
		}
		e := ProfitEntry{
			RecordID:  r.ID,
			ProductID: r.ProductID,
			Date:      r.Date,
			Profit:    r.Profit,
		}
		if r.Product != nil {
			e.ProductName = r.Product.Name
			e.Category = r.Product.Category
		}
		items = append(items, e)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Profit.GreaterThan(items[j].Profit.Decimal)
	})
	if len(items) == 0 {
		return items
	}
	top := items[0].Profit.Decimal
	hundred := decimal.NewFromInt(100)
	for i := range items {
		items[i].Percent = items[i].Profit.Decimal.Div(top).Mul(hundred).Round(1)
	}
	return items
}
