package ledger

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
	"github.com/antrian-kiosk/antrian/internal/shared/utils"
)

const (
	backendSheets = "sheets"

	valueInputUserEntered = "USER_ENTERED"
	insertDataInsertRows  = "INSERT_ROWS"
)

// SheetsOptions configures a spreadsheet-backed ledger.
type SheetsOptions struct {
	SpreadsheetID string
	// Range is read whole and appended to, e.g. "tembagapura!A:B".
	Range string
	// HeaderRows leading rows of the range are not ledger data.
	HeaderRows int

	ServiceAccountEmail string
	PrivateKey          string

	// Endpoint and HTTPClient override the Google defaults; when HTTPClient
	// is set no service account token is requested.
	Endpoint   string
	HTTPClient *http.Client
}

// SheetsLedger stores rows in a Google spreadsheet through the Sheets v4
// values API. Appends use INSERT_ROWS so existing rows are never
// overwritten.
type SheetsLedger struct {
	svc        *sheets.Service
	sheetID    string
	rng        string
	headerRows int
	logger     logger.Interface
}

func NewSheetsLedger(ctx context.Context, opts SheetsOptions, log logger.Interface) (*SheetsLedger, error) {
	if opts.Range == "" {
		return nil, fmt.Errorf("sheets ledger: range is required")
	}

	clientOpts := []option.ClientOption{}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	} else {
		jwtCfg := &jwt.Config{
			Email:      opts.ServiceAccountEmail,
			PrivateKey: []byte(opts.PrivateKey),
			Scopes:     []string{sheets.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		}
		clientOpts = append(clientOpts, option.WithHTTPClient(jwtCfg.Client(ctx)))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	log.Infow("sheets ledger initialized",
		"spreadsheet_id", opts.SpreadsheetID,
		"range", opts.Range,
		"service_account", utils.MaskEmail(opts.ServiceAccountEmail),
	)

	return &SheetsLedger{
		svc:        svc,
		sheetID:    opts.SpreadsheetID,
		rng:        opts.Range,
		headerRows: opts.HeaderRows,
		logger:     log,
	}, nil
}

// ReadRows returns the data rows of the range in sheet order. Cells beyond
// the second column are ignored and short rows are padded with "".
func (s *SheetsLedger) ReadRows(ctx context.Context) ([]ticket.Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, s.rng).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(backendSheets, "read", apiErrorCode(err), err)
	}

	values := resp.Values
	if len(values) <= s.headerRows {
		return []ticket.Row{}, nil
	}
	values = values[s.headerRows:]

	rows := make([]ticket.Row, 0, len(values))
	for _, cells := range values {
		rows = append(rows, ticket.Row{
			Number:    cellString(cells, 0),
			Timestamp: cellString(cells, 1),
		})
	}
	return rows, nil
}

func (s *SheetsLedger) AppendRow(ctx context.Context, row ticket.Row) (*ticket.AppendResult, error) {
	body := &sheets.ValueRange{
		Values: [][]interface{}{{row.Number, row.Timestamp}},
	}

	resp, err := s.svc.Spreadsheets.Values.Append(s.sheetID, s.rng, body).
		ValueInputOption(valueInputUserEntered).
		InsertDataOption(insertDataInsertRows).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapErr(backendSheets, "append", apiErrorCode(err), err)
	}

	result := &ticket.AppendResult{}
	if resp.Updates != nil {
		result.UpdatedRange = resp.Updates.UpdatedRange
	}
	s.logger.Debugw("sheets append completed",
		"ticket_number", utils.Truncate(row.Number, 32),
		"updated_range", result.UpdatedRange,
	)
	return result, nil
}

func cellString(cells []interface{}, i int) string {
	if i >= len(cells) || cells[i] == nil {
		return ""
	}
	switch v := cells[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// apiErrorCode returns the HTTP status of a Google API error.
func apiErrorCode(err error) string {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) && apiErr.Code != 0 {
		return strconv.Itoa(apiErr.Code)
	}
	return ""
}
