package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/khatrisoftware/alankar-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

// Column order of the import sheet; the first row is the header.
var sheetColumns = []string{
	"name", "category", "metalType", "gender", "weight", "price",
	"images", "sizes", "new", "sale", "featured",
}

// SheetRow is one data row. Number is the 1-based sheet row.
type SheetRow struct {
	Number int
	Input  service.CreateProductInput
	Err    error
}

func readProductsFromXLSX(filePath string) ([]SheetRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	var parsed []SheetRow
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		number := i + 2
		input, err := parseSheetRow(row)
		parsed = append(parsed, SheetRow{Number: number, Input: input, Err: err})
	}
	return parsed, nil
}

func checkHeader(header []string) error {
	for i, want := range sheetColumns {
		if !strings.EqualFold(cell(header, i), want) {
			return fmt.Errorf("column %d must be %q, got %q", i+1, want, cell(header, i))
		}
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseSheetRow(row []string) (service.CreateProductInput, error) {
	input := service.CreateProductInput{
		Name:           cell(row, 0),
		Category:       cell(row, 1),
		MetalType:      cell(row, 2),
		Gender:         cell(row, 3),
		Weight:         cell(row, 4),
		Images:         splitList(cell(row, 6)),
		AvailableSizes: splitList(cell(row, 7)),
		IsNewProduct:   parseFlag(cell(row, 8)),
		IsOnSale:       parseFlag(cell(row, 9)),
		IsFeatured:     parseFlag(cell(row, 10)),
	}

	if raw := cell(row, 5); raw != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return input, fmt.Errorf("price %q is not a number", raw)
		}
		price := service.Price(v)
		input.Price = &price
	}
	return input, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFlag(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
