package report

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"github.com/talkincode/stockboard/internal/domain"
)

// Summary totals a set of daily records.
type Summary struct {
	RecordCount    int             `json:"recordCount"`
	TotalSales     domain.Money    `json:"totalSales"`
	TotalProfit    domain.Money    `json:"totalProfit"`
	TotalSoldItems int             `json:"totalSoldItems"`
	TotalAdded     int             `json:"totalAdded"`
	LowStockCount  int             `json:"lowStockCount"`
	ProfitMargin   decimal.Decimal `json:"profitMargin"`
}

// Summarize reduces records that were already filtered by the caller.
func Summarize(records []domain.DailyRecord) Summary {
	var s Summary
	for i := range records {
		r := &records[i]
		s.RecordCount++
		s.TotalSales = s.TotalSales.Plus(r.AmountSold)
		s.TotalProfit = s.TotalProfit.Plus(r.Profit)
		s.TotalSoldItems += r.SoldStock
		s.TotalAdded += r.AddedStock
		if r.IsLowStock() {
			s.LowStockCount++
		}
	}
	s.ProfitMargin = ProfitMargin(s.TotalProfit, s.TotalSales)
	return s
}

// ProfitMargin returns profit / sales * 100 rounded to two places, or 0 when there were no sales.
func ProfitMargin(totalProfit, totalSales domain.Money) decimal.Decimal {
	if totalSales.IsZero() {
		return decimal.Zero
	}
	return totalProfit.Decimal.Div(totalSales.Decimal).Mul(decimal.NewFromInt(100)).Round(2)
}

// UnitStats describes sold quantities per record.
type UnitStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// SoldUnitStats computes mean, median and max sold units; all zero for an empty set.
func SoldUnitStats(records []domain.DailyRecord) (UnitStats, error) {
	if len(records) == 0 {
		return UnitStats{}, nil
	}
	data := make(stats.Float64Data, 0, len(records))
	for _, r := range records {
		data = append(data, float64(r.SoldStock))
	}
	var (
		us  UnitStats
		err error
	)
	if us.Mean, err = data.Mean(); err != nil {
		return UnitStats{}, err
	}
	if us.Mean, err = stats.Round(us.Mean, 2); err != nil {
		return UnitStats{}, err
	}
	if us.Median, err = data.Median(); err != nil {
		return UnitStats{}, err
	}
	if us.Max, err = data.Max(); err != nil {
		return UnitStats{}, err
	}
	return us, nil
}
