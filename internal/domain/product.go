package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry priced in two-decimal money.
type Product struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:200;not null;index" json:"name"`
	Category     string    `gorm:"size:100;not null;index" json:"category"`
	CostPrice    Money     `gorm:"type:decimal(10,2);not null" json:"costPrice"`
	SellingPrice Money     `gorm:"type:decimal(10,2);not null" json:"sellingPrice"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// UnitProfit is the margin earned on a single unit.
func (p Product) UnitProfit() Money {
	return p.SellingPrice.Minus(p.CostPrice)
}

// MarginPercent is (selling - cost) / cost * 100 rounded to one place, 0 for a zero cost.
func (p Product) MarginPercent() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.CostPrice.Decimal).
		Div(p.CostPrice.Decimal).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}
