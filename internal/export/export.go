package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"waystation/internal/compare"
)

// Headers are the comparison export columns.
var Headers = []string{"Rank", "Supplier", "Price/lb", "Origin", "MOQ", "Certifications", "Best", "Missing Info"}

// Table flattens a comparison into export rows.
func Table(cmp compare.Comparison) [][]string {
	data := make([][]string, 0, len(cmp.Rows))
	for _, row := range cmp.Rows {
		q := row.Quote
		price := "-"
		if p, ok := q.PricePerPound.Get(); ok {
			price = strconv.FormatFloat(p, 'f', 2, 64)
		}
		moq := "-"
		if m, ok := q.MinOrderQty.Get(); ok {
			moq = strconv.Itoa(m)
		}
		best := ""
		if row.IsBest {
			best = "yes"
		}
		data = append(data, []string{
			strconv.Itoa(row.Rank),
			q.Supplier.CompanyName,
			price,
			q.CountryOfOrigin.OrElse("-"),
			moq,
			strings.Join(q.CertificationNames(), ", "),
			best,
			strings.Join(row.Missing, "; "),
		})
	}
	return data
}

// WriteCSV writes the comparison as CSV.
func WriteCSV(w io.Writer, cmp compare.Comparison) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Headers); err != nil {
		return fmt.Errorf("write CSV headers: %w", err)
	}
	for _, row := range Table(cmp) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SheetName is the worksheet the comparison is written to.
const SheetName = "Comparison"

// WriteXLSX writes the comparison as an Excel workbook. Best rows are
// highlighted.
func WriteXLSX(w io.Writer, cmp compare.Comparison) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	bestStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCFCE7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create best style: %w", err)
	}

	for i, header := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, header)
		f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	for rowIdx, values := range Table(cmp) {
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(SheetName, cell, value)
		}
		if cmp.Rows[rowIdx].IsBest {
			first, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
			last, _ := excelize.CoordinatesToCellName(len(Headers), rowIdx+2)
			f.SetCellStyle(SheetName, first, last, bestStyle)
		}
	}

	for i := range Headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(SheetName, col, col, 18)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
