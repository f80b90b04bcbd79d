package inventory

import "github.com/talkincode/stockboard/internal/domain"

// Derived holds the values computed for a daily record at write time.
type Derived struct {
	ClosingStock int
	AmountSold   domain.Money
	Profit       domain.Money
}

// ComputeDerived is the single source of the record formulas:
//
//	closing = opening + added - sold   (may be negative)
//	amount  = sold * selling
//	profit  = sold * (selling - cost)  (may be negative)
func ComputeDerived(opening, added, sold int, cost, selling domain.Money) Derived {
	return Derived{
		ClosingStock: opening + added - sold,
		AmountSold:   selling.Times(sold),
		Profit:       selling.Minus(cost).Times(sold),
	}
}

func (d Derived) apply(r *domain.DailyRecord) {
	r.ClosingStock = d.ClosingStock
	r.AmountSold = d.AmountSold
	r.Profit = d.Profit
}
