package report

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/talkincode/stockboard/internal/domain"
)

const sheetName = "Daily Stock"

// ExportRow is the flat export layout of one record.
type ExportRow struct {
	ItemName     string `csv:"Item Name"`
	Category     string `csv:"Category"`
	OpeningStock int    `csv:"Opening Stock"`
	AddedStock   int    `csv:"Added Stock"`
	TotalStock   int    `csv:"Total Stock"`
	SoldStock    int    `csv:"Sold Stock"`
	AmountSold   string `csv:"Amount Sold"`
	ClosingStock int    `csv:"Closing Stock"`
	Profit       string `csv:"Profit"`
}

// ExportHeaders is the column order shared by every export format.
var ExportHeaders = []string{
	"Item Name", "Category", "Opening Stock", "Added Stock", "Total Stock",
	"Sold Stock", "Amount Sold", "Closing Stock", "Profit",
}

// Rows flattens joined records in their given order.
func Rows(records []domain.DailyRecord) []*ExportRow {
	rows := make([]*ExportRow, 0, len(records))
	for _, r := range records {
		row := &ExportRow{
			OpeningStock: r.OpeningStock,
			AddedStock:   r.AddedStock,
			TotalStock:   r.TotalStock(),
			SoldStock:    r.SoldStock,
			AmountSold:   r.AmountSold.String(),
			ClosingStock: r.ClosingStock,
			Profit:       r.Profit.String(),
		}
		if r.Product != nil {
			row.ItemName = r.Product.Name
			row.Category = r.Product.Category
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *ExportRow) values() []interface{} {
	return []interface{}{
		r.ItemName, r.Category, r.OpeningStock, r.AddedStock, r.TotalStock,
		r.SoldStock, r.AmountSold, r.ClosingStock, r.Profit,
	}
}

// WriteCSV writes the header row followed by one row per record.
func WriteCSV(w io.Writer, records []domain.DailyRecord) error {
	return errors.Wrap(gocsv.Marshal(Rows(records), w), "write csv")
}

// WriteXLSX writes the same layout as WriteCSV to a single-sheet workbook.
func WriteXLSX(w io.Writer, records []domain.DailyRecord) error {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)
	for i, h := range ExportHeaders {
		f.SetCellValue(sheetName, cellName(i, 1), h)
	}
	for n, row := range Rows(records) {
		for i, v := range row.values() {
			f.SetCellValue(sheetName, cellName(i, n+2), v)
		}
	}
	return errors.Wrap(f.Write(w), "write xlsx")
}

// FileName names an export for the given date filter.
func FileName(date, ext string) string {
	if date == "" {
		date = "all"
	}
	return fmt.Sprintf("daily-stock-%s.%s", date, ext)
}

// cellName maps a zero-based column and a one-based row to an A1 reference.
func cellName(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}
