// Package sheetsdb keeps the submission set in the first rows of a Google Sheets worksheet.
package sheetsdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
)

// valuesAPI is the subset of the Sheets values API the backend relies on.
type valuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

type DB struct {
	api       valuesAPI
	sheetID   string
	sheetName string
}

var _ evaluation.Backend = (*DB)(nil) // interface compliance check

// Open connects to the worksheet configured in conf.Store, authenticating with a service account key file.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	if conf.Store.SheetID == "" {
		return nil, errors.New("store.sheetID is not set")
	}
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if conf.Store.SheetCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Store.SheetCredentials))
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, core.NewStoreConnectError(errors.Wrap(err, "creating sheets client"))
	}
	return newDB(&serviceAPI{srv: srv}, conf.Store.SheetID, conf.Store.SheetName), nil
}

func newDB(api valuesAPI, sheetID, sheetName string) *DB {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &DB{api: api, sheetID: sheetID, sheetName: sheetName}
}

// ReadRows reads every value of the worksheet. Any API failure means the sheet is unreachable.
func (db *DB) ReadRows(ctx context.Context) ([]evaluation.Row, error) {
	values, err := db.api.Get(ctx, db.sheetID, db.sheetName)
	if err != nil {
		return nil, core.NewStoreConnectError(errors.Wrap(err, "reading sheet"))
	}
	return evaluation.ParseRecords(toRecords(values))
}

// WriteRows clears the worksheet and writes the header followed by rows.
func (db *DB) WriteRows(ctx context.Context, rows []evaluation.Row) error {
	if err := db.api.Clear(ctx, db.sheetID, db.sheetName); err != nil {
		return core.NewStoreConnectError(errors.Wrap(err, "clearing sheet"))
	}
	rng := db.sheetName + "!A1"
	if err := db.api.Update(ctx, db.sheetID, rng, toValues(evaluation.Records(rows))); err != nil {
		// the sheet was cleared already: the set is lost until the next successful save
		return core.NewStoreConnectError(errors.Wrap(err, "updating sheet"))
	}
	return nil
}

func toRecords(values [][]interface{}) [][]string {
	records := make([][]string, 0, len(values))
	for _, vs := range values {
		rec := make([]string, len(vs))
		for i, v := range vs {
			rec[i] = cellString(v)
		}
		records = append(records, rec)
	}
	return records
}

// cellString renders a cell value. Numbers never use exponent notation, so long student IDs survive.
func cellString(v interface{}) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func toValues(records [][]string) [][]interface{} {
	values := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		vs := make([]interface{}, len(rec))
		for i, s := range rec {
			vs[i] = s
		}
		values = append(values, vs)
	}
	return values
}

type serviceAPI struct {
	srv *sheets.Service
}

func (a *serviceAPI) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	res, err := a.srv.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE"). // cells come back as displayed
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

func (a *serviceAPI) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := a.srv.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (a *serviceAPI) Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := a.srv.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW"). // keep timestamps and scores as written
		Context(ctx).
		Do()
	return err
}
