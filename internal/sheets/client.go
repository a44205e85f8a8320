package sheets

import (
	"context"
	"fmt"

	sheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"github.com/letterrip/letterrip/internal/google"
)

// Client wraps the Google Sheets API for a single account
type Client struct {
	svc     *sheets.Service
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Sheets client authenticated for a specific
// account using the file-based token store
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	return newClient(ctx, account, option.WithHTTPClient(httpClient))
}

// NewClientForAccountWithProvider creates a Sheets client using the given
// token provider
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	return newClient(ctx, account, option.WithHTTPClient(google.GetHTTPClientForToken(ctx, token)))
}

func newClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &Client{svc: svc, account: account}, nil
}

// GetSpreadsheetInfo returns metadata about a spreadsheet and its sheets
func (c *Client) GetSpreadsheetInfo(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	res, err := c.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	info := &SpreadsheetInfo{
		SpreadsheetID: res.SpreadsheetId,
	}
	if res.Properties != nil {
		info.Title = res.Properties.Title
		info.Locale = res.Properties.Locale
		info.TimeZone = res.Properties.TimeZone
	}
	for _, sheet := range res.Sheets {
		if sheet.Properties == nil {
			continue
		}
		si := SheetInfo{
			SheetID: sheet.Properties.SheetId,
			Title:   sheet.Properties.Title,
		}
		if grid := sheet.Properties.GridProperties; grid != nil {
			si.RowCount = grid.RowCount
			si.ColumnCount = grid.ColumnCount
		}
		info.Sheets = append(info.Sheets, si)
	}
	return info, nil
}

// GetHeaders returns the first row of a sheet
func (c *Client) GetHeaders(ctx context.Context, spreadsheetID, sheetName string) ([]string, error) {
	rangeNotation := fmt.Sprintf("'%s'!1:1", sheetName)
	res, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rangeNotation).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get headers of %s: %w", sheetName, err)
	}
	if len(res.Values) == 0 {
		return nil, nil
	}
	return cellStrings(res.Values[0]), nil
}

// ReadSheet reads rows from a sheet as header-keyed maps. When
// rangeNotation is empty the whole sheet is read. With includeHeaders the
// first row provides the keys, otherwise column_0, column_1, ... are used.
func (c *Client) ReadSheet(ctx context.Context, spreadsheetID, sheetName, rangeNotation string, includeHeaders bool) ([]Row, error) {
	fullRange := fmt.Sprintf("'%s'", sheetName)
	if rangeNotation != "" {
		fullRange = fmt.Sprintf("'%s'!%s", sheetName, rangeNotation)
	}

	res, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, fullRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	return RowsFromValues(res.Values, includeHeaders), nil
}

// FindRows returns rows where the given column matches value. With
// exactMatch the comparison is equality, otherwise a case-insensitive
// substring match.
func (c *Client) FindRows(ctx context.Context, spreadsheetID, sheetName, column, value string, exactMatch bool) ([]Row, error) {
	rows, err := c.ReadSheet(ctx, spreadsheetID, sheetName, "", true)
	if err != nil {
		return nil, err
	}
	return MatchRows(rows, column, value, exactMatch), nil
}

// GetRowByID returns the first row whose idColumn equals idValue, or nil
func (c *Client) GetRowByID(ctx context.Context, spreadsheetID, sheetName, idColumn, idValue string) (Row, error) {
	matches, err := c.FindRows(ctx, spreadsheetID, sheetName, idColumn, idValue, true)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}
