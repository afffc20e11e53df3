// Package memory provides an in-memory spreadsheet fake implementing the
// sheets ports, used by tests in place of the Google client.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendtrack/internal/sheets"
)

// Store holds fake spreadsheet documents addressable by id. Error fields, when
// set, are returned by the corresponding operations to exercise failure paths.
type Store struct {
	mu   sync.Mutex
	docs map[string]*Document

	OpenErr     error
	AddSheetErr error
	AppendErr   error
}

func New() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Seed registers a document under the given spreadsheet id.
func (s *Store) Seed(spreadsheetID, title string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := &Document{store: s, title: title, sheets: make(map[string]*Worksheet)}
	s.docs[spreadsheetID] = doc
	return doc
}

func (s *Store) Open(_ context.Context, spreadsheetID string) (sheets.Document, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("spreadsheet not found: %s", spreadsheetID)
	}
	return doc, nil
}

type Document struct {
	store  *Store
	mu     sync.Mutex
	title  string
	sheets map[string]*Worksheet
	order  []string
}

func (d *Document) Title() string { return d.title }

func (d *Document) SheetByTitle(title string) (sheets.Worksheet, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ws, ok := d.sheets[title]
	if !ok {
		return nil, false
	}
	return ws, true
}

func (d *Document) AddSheet(_ context.Context, title string, headers []string) (sheets.Worksheet, error) {
	if d.store.AddSheetErr != nil {
		return nil, d.store.AddSheetErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.sheets[title]; exists {
		return nil, fmt.Errorf("worksheet already exists: %s", title)
	}
	ws := &Worksheet{store: d.store, title: title, Header: append([]string(nil), headers...)}
	d.sheets[title] = ws
	d.order = append(d.order, title)
	return ws, nil
}

// SheetTitles returns created worksheet titles in creation order.
func (d *Document) SheetTitles() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.order...)
}

type Worksheet struct {
	store  *Store
	mu     sync.Mutex
	title  string
	Header []string
	rows   [][]string
}

func (w *Worksheet) Title() string { return w.title }

func (w *Worksheet) AppendRow(_ context.Context, values []string) error {
	if w.store.AppendErr != nil {
		return w.store.AppendErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, append([]string(nil), values...))
	return nil
}

// Rows returns appended rows, header excluded.
func (w *Worksheet) Rows() [][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]string, len(w.rows))
	for i, r := range w.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
