package domain

import "time"

// LowStockThreshold flags records whose closing stock dropped below it.
const LowStockThreshold = 10

// DateLayout is the calendar-date layout used for DailyRecord.Date.
const DateLayout = "2006-01-02"

// DailyRecord holds one product's stock movement for one day.
// ClosingStock, AmountSold and Profit are derived at write time and never taken from callers.
type DailyRecord struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_daily_record_product_date,priority:1" json:"productId"`
	Date         string    `gorm:"size:10;not null;index;uniqueIndex:idx_daily_record_product_date,priority:2" json:"date"`
	OpeningStock int       `gorm:"not null;default:0" json:"openingStock"`
	AddedStock   int       `gorm:"not null;default:0" json:"addedStock"`
	SoldStock    int       `gorm:"not null;default:0" json:"soldStock"`
	ClosingStock int       `gorm:"not null" json:"closingStock"`
	AmountSold   Money     `gorm:"type:decimal(20,2);not null" json:"amountSold"`
	Profit       Money     `gorm:"type:decimal(20,2);not null" json:"profit"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Product is populated by queries that join the catalog.
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

// TableName Specify table name
func (DailyRecord) TableName() string {
	return "daily_records"
}

// TotalStock is the stock available during the day.
func (r DailyRecord) TotalStock() int {
	return r.OpeningStock + r.AddedStock
}

// IsLowStock reports whether closing stock fell below LowStockThreshold, negative included.
func (r DailyRecord) IsLowStock() bool {
	return r.ClosingStock < LowStockThreshold
}
