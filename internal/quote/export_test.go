// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quote

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/olegiv/partsadmin/internal/catalog"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestWriteXLSX(t *testing.T) {
	discount := 10.0
	q := &catalog.ExtractedQuote{
		ID:           "q-1",
		QuoteNumber:  "QT/2024 01",
		CustomerName: "Acme",
		Currency:     "EUR",
		Items: []catalog.ExtractedQuoteItem{
			{PartName: "Brake pad", Quantity: 2, UnitPrice: 10, Discount: &discount, TotalPrice: 18},
			{PartName: "Oil filter", Quantity: 3, UnitPrice: 4.5, TotalPrice: 13.5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, q))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{itemsSheet}, f.GetSheetList())

	rows, err := f.GetRows(itemsSheet)
	require.NoError(t, err)

	var found []string
	for _, r := range rows {
		if len(r) > 1 {
			found = append(found, r[1])
		}
	}
	assert.Contains(t, found, "QT/2024 01")
	assert.Contains(t, found, "Brake pad")
	assert.Contains(t, found, "Oil filter")

	last := rows[len(rows)-1]
	require.Len(t, last, 7)
	assert.Equal(t, "Total", last[5])
	assert.Equal(t, "31.5", last[6])
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "quote_QT_2024_01.xlsx", ExportFilename(&catalog.ExtractedQuote{QuoteNumber: "QT/2024 01"}))
	assert.Equal(t, "quote_abc.xlsx", ExportFilename(&catalog.ExtractedQuote{ID: "abc"}))
	assert.Equal(t, "quote_quote.xlsx", ExportFilename(&catalog.ExtractedQuote{QuoteNumber: "///"}))
	assert.Equal(t, "quote_Angebot_Nr.7.xlsx", ExportFilename(&catalog.ExtractedQuote{QuoteNumber: "Angebot Nr.7"}))
	assert.Equal(t, "quote_Schatzung-12.xlsx", ExportFilename(&catalog.ExtractedQuote{QuoteNumber: "Schätzung-12"}))
}

func TestPrepareDocument_PDFUntouched(t *testing.T) {
	data := []byte("%PDF-1.7")
	doc, err := PrepareDocument(data, "application/pdf")
	require.NoError(t, err)
	assert.False(t, doc.Changed)
	assert.Equal(t, data, doc.Data)
}

func TestPrepareDocument_SmallImageUntouched(t *testing.T) {
	data := pngBytes(t, 40, 20)
	doc, err := PrepareDocument(data, "image/png")
	require.NoError(t, err)
	assert.False(t, doc.Changed)
	assert.Equal(t, data, doc.Data)
}

func TestPrepareDocument_DownscalesLargeImage(t *testing.T) {
	data := pngBytes(t, MaxImageDimension*2, 100)
	doc, err := PrepareDocument(data, "image/png")
	require.NoError(t, err)
	require.True(t, doc.Changed)
	assert.Equal(t, "image/png", doc.ContentType)

	img, err := imaging.Decode(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	assert.Equal(t, MaxImageDimension, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestPrepareDocument_Undecodable(t *testing.T) {
	_, err := PrepareDocument([]byte("not an image"), "image/jpeg")
	assert.Error(t, err)
}

func TestApplyOrientation(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	assert.Equal(t, 4, applyOrientation(img, 1).Bounds().Dx())
	assert.Equal(t, 2, applyOrientation(img, 6).Bounds().Dx())
	assert.Equal(t, 2, applyOrientation(img, 8).Bounds().Dx())
	assert.Equal(t, 4, applyOrientation(img, 3).Bounds().Dx())
}

func TestUpload_SendsUndecodablePhotoAsIs(t *testing.T) {
	api := &fakeAPI{}
	res, err := Upload(context.Background(), api, "photo.jpg", "image/jpeg", 5, 0, bytes.NewReader([]byte("bogus")))
	require.NoError(t, err)
	assert.False(t, res.Resized)
	assert.Equal(t, "bogus", api.body)
}
