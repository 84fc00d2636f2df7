// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quote

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/partsadmin/internal/catalog"
)

type fakeAPI struct {
	calls int
	body  string
	err   error
}

func (f *fakeAPI) UploadQuote(_ context.Context, filename string, r io.Reader) (*catalog.ExtractedQuote, error) {
	f.calls++
	b, _ := io.ReadAll(r)
	f.body = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.ExtractedQuote{ID: "q1", AttachmentFilename: filename}, nil
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		want        error
	}{
		{"pdf", "application/pdf", 1024, nil},
		{"jpg alias", "image/jpg", 1024, nil},
		{"png at limit", "image/png", DefaultMaxUploadBytes, nil},
		{"too large", "image/png", DefaultMaxUploadBytes + 1, ErrTooLarge},
		{"word document", "application/msword", 1024, ErrInvalidType},
		{"empty", "application/pdf", 0, ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.contentType, tt.size, 0)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpload_RejectsBeforeSending(t *testing.T) {
	api := &fakeAPI{}
	_, err := Upload(context.Background(), api, "quote.docx", "application/msword", 10, 0, strings.NewReader("x"))

	assert.ErrorIs(t, err, ErrInvalidType)
	assert.Zero(t, api.calls)
	assert.Equal(t, MsgInvalidType, ErrorMessage(err))
}

func TestUpload(t *testing.T) {
	api := &fakeAPI{}
	res, err := Upload(context.Background(), api, "quote.pdf", "application/pdf", 3, 0, strings.NewReader("pdf"))
	require.NoError(t, err)

	assert.Equal(t, "q1", res.Quote.ID)
	assert.Equal(t, "pdf", api.body)
	assert.GreaterOrEqual(t, res.Elapsed, time.Duration(0))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, MsgTimeout, ErrorMessage(context.DeadlineExceeded))
	assert.Equal(t, MsgTimeout, ErrorMessage(&catalog.APIError{Status: 504}))
	assert.Equal(t, "Unsupported layout", ErrorMessage(&catalog.APIError{Status: 422, Detail: "Unsupported layout"}))
	assert.Equal(t, MsgUploadFailed, ErrorMessage(errors.New("")))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:00", FormatElapsed(0))
	assert.Equal(t, "0:09", FormatElapsed(9*time.Second+500*time.Millisecond))
	assert.Equal(t, "2:05", FormatElapsed(125*time.Second))
}

func TestParseItems(t *testing.T) {
	form := url.Values{
		"item_part_name":  {"Brake pad", "", "Oil filter"},
		"item_quantity":   {"2", "1", "3"},
		"item_unit_price": {"10", "5", "4,5"},
		"item_discount":   {"10", "", ""},
		"item_tax_code":   {"S", "", ""},
	}

	items, err := ParseItems(form)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Brake pad", items[0].PartName)
	assert.InDelta(t, 18.0, items[0].TotalPrice, 1e-9)
	require.NotNil(t, items[0].Discount)
	assert.Equal(t, 1, items[0].Position)

	assert.InDelta(t, 13.5, items[1].TotalPrice, 1e-9)
	assert.Nil(t, items[1].Discount)
	assert.Equal(t, 2, items[1].Position)

	assert.InDelta(t, 31.5, Total(items), 1e-9)
}

func TestParseItems_BadNumber(t *testing.T) {
	_, err := ParseItems(url.Values{
		"item_part_name": {"Brake pad"},
		"item_quantity":  {"two"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `quantity "two"`)
}
