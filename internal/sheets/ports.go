package sheets

import "context"

// Ports for the remote spreadsheet collaborator. Any concrete client that
// can open a document, look up or create a worksheet, and append a row is
// substitutable here.
type (
	Opener interface {
		// Open loads the document identified by spreadsheetID and verifies it
		// is reachable with the configured credentials.
		Open(ctx context.Context, spreadsheetID string) (Document, error)
	}

	Document interface {
		// Title returns the document's display title.
		Title() string
		// SheetByTitle looks up a worksheet by exact title.
		SheetByTitle(title string) (Worksheet, bool)
		// AddSheet creates a worksheet with the given title and header row.
		AddSheet(ctx context.Context, title string, headers []string) (Worksheet, error)
	}

	Worksheet interface {
		Title() string
		// AppendRow appends one row after the existing data.
		AppendRow(ctx context.Context, values []string) error
	}
)

// Unavailable returns an Opener whose Open always fails with err. It stands
// in for the real client when credentials are not configured, so connection
// attempts surface the configuration problem instead of crashing startup.
func Unavailable(err error) Opener {
	return unavailableOpener{err: err}
}

type unavailableOpener struct{ err error }

func (o unavailableOpener) Open(context.Context, string) (Document, error) {
	return nil, o.err
}
