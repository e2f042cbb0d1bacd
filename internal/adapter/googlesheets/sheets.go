// Package googlesheets implements adapter.SheetsGateway with the Sheets v4 API.
package googlesheets

import (
	"context"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jun/gophdrive/gateway/internal/adapter"
	"github.com/jun/gophdrive/gateway/internal/model"
)

const (
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
	metadataFields   = "spreadsheetId,properties,sheets.properties"
)

type Gateway struct {
	creds adapter.CredentialSource
	opts  []option.ClientOption
}

var _ adapter.SheetsGateway = (*Gateway)(nil)

func NewGateway(creds adapter.CredentialSource, opts ...option.ClientOption) *Gateway {
	return &Gateway{creds: creds, opts: opts}
}

func (g *Gateway) service(ctx context.Context) (*sheets.Service, error) {
	client, err := g.creds.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, g.opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return srv, nil
}

func (g *Gateway) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*model.Spreadsheet, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	ss, err := srv.Spreadsheets.Get(spreadsheetID).Fields(googleapi.Field(metadataFields)).Context(ctx).Do()
	if err != nil {
		return nil, adapter.RemoteAPI("sheets.spreadsheets.get", err)
	}

	out := &model.Spreadsheet{SpreadsheetID: ss.SpreadsheetId, Sheets: make([]model.SheetInfo, 0, len(ss.Sheets))}
	if ss.Properties != nil {
		out.Title = ss.Properties.Title
	}
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		out.Sheets = append(out.Sheets, model.SheetInfo{
			SheetID: sh.Properties.SheetId,
			Title:   sh.Properties.Title,
			Index:   sh.Properties.Index,
		})
	}
	return out, nil
}

func (g *Gateway) ReadValues(ctx context.Context, spreadsheetID, rng string) (*model.ValueRange, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	vr, err := srv.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, adapter.RemoteAPI("sheets.values.get", err)
	}
	values := vr.Values
	if values == nil {
		values = [][]any{}
	}
	return &model.ValueRange{Range: vr.Range, MajorDimension: vr.MajorDimension, Values: values}, nil
}

// WriteValues overwrites rng. Values are parsed as if typed into the UI.
func (g *Gateway) WriteValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (*model.UpdateResult, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := srv.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, adapter.RemoteAPI("sheets.values.update", err)
	}
	return &model.UpdateResult{
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}, nil
}

// AppendValues inserts new rows after the table found in rng.
func (g *Gateway) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (*model.AppendResult, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := srv.Spreadsheets.Values.Append(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, adapter.RemoteAPI("sheets.values.append", err)
	}
	out := &model.AppendResult{SpreadsheetID: resp.SpreadsheetId, TableRange: resp.TableRange}
	if u := resp.Updates; u != nil {
		out.UpdatedRange = u.UpdatedRange
		out.UpdatedRows = u.UpdatedRows
		out.UpdatedCells = u.UpdatedCells
	}
	return out, nil
}

func (g *Gateway) ClearValues(ctx context.Context, spreadsheetID, rng string) (string, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return "", err
	}
	resp, err := srv.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return "", adapter.RemoteAPI("sheets.values.clear", err)
	}
	if resp.ClearedRange == "" {
		return rng, nil
	}
	return resp.ClearedRange, nil
}
