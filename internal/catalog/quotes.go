// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"io"
	"net/url"
)

// UploadQuote uploads a quote document for extraction. It blocks until
// extraction finishes, bounded by the upload timeout.
func (c *Client) UploadQuote(ctx context.Context, filename string, r io.Reader) (*ExtractedQuote, error) {
	var out ExtractedQuote
	if err := c.upload(ctx, "/extracted-quotes/upload", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Quotes lists extracted quotes.
func (c *Client) Quotes(ctx context.Context, f QuoteFilter) (*Page[ExtractedQuote], error) {
	q := pageQuery(f.Page, f.PageSize)
	setIf(q, "search", f.Search)
	setIf(q, "extraction_status", f.ExtractionStatus)
	setIf(q, "uploaded_by", f.UploadedBy)

	var out Page[ExtractedQuote]
	if err := c.get(ctx, "/extracted-quotes/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Quote fetches one extracted quote.
func (c *Client) Quote(ctx context.Context, id string) (*ExtractedQuote, error) {
	var out ExtractedQuote
	if err := c.get(ctx, "/extracted-quotes/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateQuote saves corrections to an extracted quote.
func (c *Client) UpdateQuote(ctx context.Context, id string, p ExtractedQuoteUpdate) (*ExtractedQuote, error) {
	var out ExtractedQuote
	if err := c.put(ctx, "/extracted-quotes/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteQuote deletes an extracted quote and its stored file.
func (c *Client) DeleteQuote(ctx context.Context, id string) error {
	return c.delete(ctx, "/extracted-quotes/"+esc(id), nil)
}

// QuoteFile downloads the original uploaded document.
func (c *Client) QuoteFile(ctx context.Context, id string) (*File, error) {
	return c.download(ctx, "/extracted-quotes/"+esc(id)+"/file", nil, "quote-"+id)
}

// QuotePreviewURL returns a browser-openable preview URL. The token is
// passed in the query because the browser cannot set headers on it.
func (c *Client) QuotePreviewURL(id, token string) string {
	q := url.Values{}
	q.Set("token", token)
	return c.endpoint("/extracted-quotes/"+esc(id)+"/preview", q)
}
