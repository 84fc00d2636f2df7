// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guide renders the embedded reviewer guide from Markdown.
package guide

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed docs/*.md
var docsFS embed.FS

// ErrNotFound is returned for an unknown guide slug.
var ErrNotFound = errors.New("guide not found")

// Page is a rendered guide.
type Page struct {
	Slug    string
	Title   string
	Content template.HTML
}

// Entry is a guide listed in the index.
type Entry struct {
	Slug  string
	Title string
}

// Guide renders and caches guide pages.
type Guide struct {
	files fs.FS
	md    goldmark.Markdown

	mu    sync.RWMutex
	pages map[string]Page
}

// New creates a guide over the embedded docs.
func New() *Guide {
	sub, _ := fs.Sub(docsFS, "docs")
	return NewFromFS(sub)
}

// NewFromFS creates a guide over any directory of .md files.
func NewFromFS(files fs.FS) *Guide {
	return &Guide{
		files: files,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		pages: make(map[string]Page),
	}
}

// List returns the available guides sorted by title.
func (g *Guide) List() []Entry {
	entries, err := fs.ReadDir(g.files, ".")
	if err != nil {
		return nil
	}
	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), ".md")
		out = append(out, Entry{Slug: slug, Title: slugToTitle(slug)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// Render returns the guide for slug as HTML.
func (g *Guide) Render(slug string) (Page, error) {
	if !validSlug(slug) {
		return Page{}, ErrNotFound
	}

	g.mu.RLock()
	p, ok := g.pages[slug]
	g.mu.RUnlock()
	if ok {
		return p, nil
	}

	src, err := fs.ReadFile(g.files, path.Clean(slug+".md"))
	if err != nil {
		return Page{}, ErrNotFound
	}
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return Page{}, err
	}

	p = Page{
		Slug:    slug,
		Title:   slugToTitle(slug),
		Content: template.HTML(buf.String()), //nolint:gosec // embedded markdown, not user input
	}
	g.mu.Lock()
	g.pages[slug] = p
	g.mu.Unlock()
	return p, nil
}

// validSlug allows only [a-zA-Z0-9_-].
func validSlug(slug string) bool {
	if slug == "" {
		return false
	}
	for _, c := range slug {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

// slugToTitle converts "hs-codes_review" to "Hs Codes Review".
func slugToTitle(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
