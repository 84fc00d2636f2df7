// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quote

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"github.com/xuri/excelize/v2"

	"github.com/olegiv/partsadmin/internal/catalog"
)

const itemsSheet = "Items"

var itemHeaders = []string{"#", "Part name", "Quantity", "Unit price", "Tax code", "Discount %", "Total"}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportFilename is the download name of a quote's spreadsheet.
func ExportFilename(q *catalog.ExtractedQuote) string {
	name := q.QuoteNumber
	if name == "" {
		name = q.ID
	}
	name = strings.Trim(unsafeFilename.ReplaceAllString(unidecode.Unidecode(name), "_"), "_")
	if name == "" {
		name = "quote"
	}
	return "quote_" + name + ".xlsx"
}

// WriteXLSX writes the header fields and items of q as a workbook.
func WriteXLSX(w io.Writer, q *catalog.ExtractedQuote) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(itemsSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	meta := [][2]string{
		{"Quote number", q.QuoteNumber},
		{"Quote date", q.QuoteDate},
		{"Customer", q.CustomerName},
		{"Vehicle", strings.TrimSpace(q.VehicleMake + " " + q.VehicleModel)},
		{"VIN", q.VehicleVIN},
		{"Currency", q.Currency},
	}
	row := 1
	for _, m := range meta {
		if err := setRow(f, row, []any{m[0], m[1]}); err != nil {
			return err
		}
		row++
	}
	row++

	headerRow := row
	header := make([]any, len(itemHeaders))
	for i, h := range itemHeaders {
		header[i] = h
	}
	if err := setRow(f, headerRow, header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(itemHeaders), headerRow)
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := f.SetCellStyle(itemsSheet, first, last, bold); err != nil {
		return err
	}

	for i, it := range q.Items {
		var discount any
		if it.Discount != nil {
			discount = *it.Discount
		}
		if err := setRow(f, headerRow+1+i, []any{i + 1, it.PartName, it.Quantity, it.UnitPrice, it.TaxCode, discount, it.TotalPrice}); err != nil {
			return err
		}
	}

	totalRow := headerRow + len(q.Items) + 1
	if err := setRow(f, totalRow, []any{nil, nil, nil, nil, nil, "Total", Total(q.Items)}); err != nil {
		return err
	}

	if err := f.SetColWidth(itemsSheet, "B", "B", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(itemsSheet, "C", "G", 14); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(itemsSheet, cell, &values)
}
