// Package google implements the sheets ports against the Google Sheets API
// using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendtrack/internal/sheets"

	"golang.org/x/oauth2/jwt"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// requestTimeout bounds every remote call so a hung request cannot stall a
// whole create workflow.
const requestTimeout = 30 * time.Second

type Client struct {
	svc *gsheet.Service
}

var _ sheets.Opener = (*Client)(nil)

// NewClient builds a Sheets client from service account credentials. The
// private key tolerates escaped newlines and missing PEM delimiters.
func NewClient(ctx context.Context, serviceAccountEmail, privateKey string) (*Client, error) {
	if serviceAccountEmail == "" || privateKey == "" {
		return nil, errors.New("Google API credentials are missing")
	}

	conf := &jwt.Config{
		Email:      serviceAccountEmail,
		PrivateKey: []byte(NormalizePrivateKey(privateKey)),
		Scopes:     []string{gsheet.SpreadsheetsScope},
		TokenURL:   googleTokenURL,
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "service_account", serviceAccountEmail)
	return &Client{svc: svc}, nil
}

// Open loads the spreadsheet's metadata, verifying reachability and listing
// its worksheets.
func (c *Client) Open(ctx context.Context, spreadsheetID string) (sheets.Document, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("load spreadsheet %s: %w", spreadsheetID, err)
	}

	doc := &document{
		svc:           c.svc,
		spreadsheetID: spreadsheetID,
		title:         resp.Properties.Title,
		sheetsByTitle: make(map[string]int64, len(resp.Sheets)),
	}
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			doc.sheetsByTitle[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	return doc, nil
}

type document struct {
	svc           *gsheet.Service
	spreadsheetID string
	title         string
	sheetsByTitle map[string]int64
}

func (d *document) Title() string { return d.title }

func (d *document) SheetByTitle(title string) (sheets.Worksheet, bool) {
	if _, ok := d.sheetsByTitle[title]; !ok {
		return nil, false
	}
	return &worksheet{doc: d, title: title}, true
}

func (d *document) AddSheet(ctx context.Context, title string, headers []string) (sheets.Worksheet, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := d.svc.Spreadsheets.BatchUpdate(d.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("add sheet %q: %w", title, err)
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		d.sheetsByTitle[title] = resp.Replies[0].AddSheet.Properties.SheetId
	} else {
		d.sheetsByTitle[title] = 0
	}

	ws := &worksheet{doc: d, title: title}
	if err := ws.AppendRow(ctx, headers); err != nil {
		return nil, fmt.Errorf("write header row for %q: %w", title, err)
	}

	slog.InfoContext(ctx, "Created worksheet", "spreadsheet_id", d.spreadsheetID, "title", title)
	return ws, nil
}

type worksheet struct {
	doc   *document
	title string
}

func (w *worksheet) Title() string { return w.title }

func (w *worksheet) AppendRow(ctx context.Context, values []string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	rng := fmt.Sprintf("'%s'!A1", w.title)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := w.doc.svc.Spreadsheets.Values.Append(w.doc.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %q: %w", w.title, err)
	}
	return nil
}
