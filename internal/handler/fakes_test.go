package handler_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/gophdrive/gateway/internal/adapter"
	"github.com/jun/gophdrive/gateway/internal/model"
)

var errUnauthenticated = adapter.New(adapter.KindUnauthenticated, "load credential", nil)

func makeRequest(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod:            method,
		Path:                  path,
		Body:                  body,
		Headers:               map[string]string{"Content-Type": "application/json"},
		PathParameters:        map[string]string{},
		QueryStringParameters: map[string]string{},
	}
}

func decode(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", resp.Body, err)
	}
	return out
}

type fakeAuth struct {
	url          string
	urlErr       error
	exchangeErr  error
	exchanged    []string
	lastState    string
	authed       bool
	logoutCalled int
}

func (f *fakeAuth) AuthorizationURL(_ context.Context, state string) (string, error) {
	f.lastState = state
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return f.url + "?state=" + state, nil
}

func (f *fakeAuth) ExchangeCode(_ context.Context, code string) error {
	f.exchanged = append(f.exchanged, code)
	return f.exchangeErr
}

func (f *fakeAuth) IsAuthenticated(context.Context) bool { return f.authed }

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled++
	f.authed = false
	return nil
}

type fakeDrive struct {
	root     string
	files    map[string]model.FileRecord
	content  map[string][]byte
	lastList adapter.ListOptions
	uploaded *adapter.UploadInput
	trashed  []string
	deleted  []string
	err      error
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{files: map[string]model.FileRecord{}, content: map[string][]byte{}}
}

func (f *fakeDrive) RootFolderID() string { return f.root }

func (f *fakeDrive) ListFiles(_ context.Context, opts adapter.ListOptions) (*model.FileList, error) {
	f.lastList = opts
	if f.err != nil {
		return nil, f.err
	}
	list := &model.FileList{Files: []model.FileRecord{}}
	for _, r := range f.files {
		list.Files = append(list.Files, r)
	}
	return list, nil
}

func (f *fakeDrive) GetFile(_ context.Context, id string) (*model.FileRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.files[id]
	if !ok {
		return nil, adapter.RemoteAPI("drive.files.get", &notFoundError{})
	}
	return &r, nil
}

func (f *fakeDrive) DownloadFile(_ context.Context, id string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.content[id], nil
}

func (f *fakeDrive) UploadFile(_ context.Context, in adapter.UploadInput) (*model.FileRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploaded = &in
	return &model.FileRecord{ID: "uploaded-1", Name: in.Name, MIMEType: in.ContentType, Size: "0"}, nil
}

func (f *fakeDrive) TrashFile(_ context.Context, id string) error {
	f.trashed = append(f.trashed, id)
	return f.err
}

func (f *fakeDrive) DeleteFilePermanently(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type notFoundError struct{}

func (*notFoundError) Error() string { return "not found" }

type fakeDocs struct {
	doc          *model.Document
	appended     []string
	replaced     [][2]string
	createdTitle string
	err          error
}

func (f *fakeDocs) GetDocument(_ context.Context, id string) (*model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func (f *fakeDocs) CreateDocument(_ context.Context, title string) (*model.CreatedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createdTitle = title
	return &model.CreatedDocument{DocumentID: "new-doc", Title: title}, nil
}

func (f *fakeDocs) AppendText(_ context.Context, id, text string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.appended = append(f.appended, text)
	return 1, nil
}

func (f *fakeDocs) ReplaceText(_ context.Context, id, search, replacement string) error {
	if f.err != nil {
		return f.err
	}
	f.replaced = append(f.replaced, [2]string{search, replacement})
	return nil
}

type fakeSheets struct {
	lastRange  string
	lastValues [][]any
	values     [][]any
	cleared    string
	err        error
}

func (f *fakeSheets) GetSpreadsheet(_ context.Context, id string) (*model.Spreadsheet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Spreadsheet{SpreadsheetID: id, Title: "Budget", Sheets: []model.SheetInfo{{SheetID: 0, Title: "Sheet1", Index: 0}}}, nil
}

func (f *fakeSheets) ReadValues(_ context.Context, id, rng string) (*model.ValueRange, error) {
	f.lastRange = rng
	if f.err != nil {
		return nil, f.err
	}
	return &model.ValueRange{Range: rng + "!A1:B2", Values: f.values}, nil
}

func (f *fakeSheets) WriteValues(_ context.Context, id, rng string, values [][]any) (*model.UpdateResult, error) {
	f.lastRange, f.lastValues = rng, values
	if f.err != nil {
		return nil, f.err
	}
	return &model.UpdateResult{UpdatedRange: rng, UpdatedRows: int64(len(values)), UpdatedColumns: 2, UpdatedCells: 4}, nil
}

func (f *fakeSheets) AppendValues(_ context.Context, id, rng string, values [][]any) (*model.AppendResult, error) {
	f.lastRange, f.lastValues = rng, values
	if f.err != nil {
		return nil, f.err
	}
	return &model.AppendResult{SpreadsheetID: id, TableRange: "Sheet1!A1:B2", UpdatedRange: "Sheet1!A3:B3", UpdatedRows: 1, UpdatedCells: 2}, nil
}

func (f *fakeSheets) ClearValues(_ context.Context, id, rng string) (string, error) {
	f.lastRange = rng
	if f.err != nil {
		return "", f.err
	}
	if f.cleared != "" {
		return f.cleared, nil
	}
	return rng, nil
}

func must(resp events.APIGatewayProxyResponse, err error) events.APIGatewayProxyResponse {
	if err != nil {
		panic(err)
	}
	return resp
}
