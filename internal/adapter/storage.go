package adapter

import (
	"context"

	"github.com/jun/gophdrive/gateway/internal/model"
)

// ListOptions filters a Drive listing. Zero values mean "not set".
type ListOptions struct {
	PageSize  int64
	PageToken string
	Query     string
	FolderID  string
}

// UploadInput describes a file to create in Drive.
type UploadInput struct {
	Name        string
	ContentType string
	Content     []byte
	FolderID    string
}

// DriveGateway exposes the Drive operations served by the API.
type DriveGateway interface {
	// RootFolderID returns the configured default folder, or "".
	RootFolderID() string

	// ListFiles lists non-trashed files, newest folders first.
	ListFiles(ctx context.Context, opts ListOptions) (*model.FileList, error)

	// GetFile returns the metadata of a single file.
	GetFile(ctx context.Context, fileID string) (*model.FileRecord, error)

	// DownloadFile returns the raw content of a file.
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)

	// UploadFile creates a new file in FolderID, else in the configured root.
	UploadFile(ctx context.Context, in UploadInput) (*model.FileRecord, error)

	// TrashFile moves a file to the trash.
	TrashFile(ctx context.Context, fileID string) error

	// DeleteFilePermanently removes a file bypassing the trash.
	DeleteFilePermanently(ctx context.Context, fileID string) error
}

// DocsGateway exposes the Google Docs operations served by the API.
type DocsGateway interface {
	GetDocument(ctx context.Context, documentID string) (*model.Document, error)
	CreateDocument(ctx context.Context, title string) (*model.CreatedDocument, error)

	// AppendText adds text on a new line at the end of the body and returns
	// the number of replies from the batch update.
	AppendText(ctx context.Context, documentID, text string) (int, error)

	// ReplaceText replaces every case-insensitive occurrence of search.
	ReplaceText(ctx context.Context, documentID, search, replacement string) error
}

// SheetsGateway exposes the Google Sheets operations served by the API.
type SheetsGateway interface {
	GetSpreadsheet(ctx context.Context, spreadsheetID string) (*model.Spreadsheet, error)
	ReadValues(ctx context.Context, spreadsheetID, rng string) (*model.ValueRange, error)
	WriteValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (*model.UpdateResult, error)
	AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (*model.AppendResult, error)

	// ClearValues empties the range and returns the range actually cleared.
	ClearValues(ctx context.Context, spreadsheetID, rng string) (string, error)
}
