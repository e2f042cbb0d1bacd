package model

import "time"

// UserToken represents the user's OAuth2 credential stored in DynamoDB.
type UserToken struct {
	UserID                string    `json:"user_id" dynamodbav:"user_id"`
	EncryptedRefreshToken string    `json:"encrypted_refresh_token" dynamodbav:"encrypted_refresh_token"`
	AccessToken           string    `json:"access_token" dynamodbav:"access_token"`
	TokenType             string    `json:"token_type" dynamodbav:"token_type"`
	Expiry                time.Time `json:"expiry" dynamodbav:"expiry"`
	UpdatedAt             time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// FileRecord is the flattened Drive file returned by the API.
type FileRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MIMEType       string `json:"mimeType"`
	Size           string `json:"size"`
	CreatedTime    string `json:"createdTime"`
	ModifiedTime   string `json:"modifiedTime"`
	WebViewLink    string `json:"webViewLink,omitempty"`
	WebContentLink string `json:"webContentLink,omitempty"`
	Parents        string `json:"parents,omitempty"`
	Trashed        bool   `json:"trashed"`
}

// FileList is one page of a Drive listing.
type FileList struct {
	Files         []FileRecord `json:"files"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
}

// Document is a Google Doc reduced to its plain text.
type Document struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	PlainText  string `json:"plainText"`
	RevisionID string `json:"revisionId"`
}

// CreatedDocument identifies a freshly created Google Doc.
type CreatedDocument struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
}

// SheetInfo describes one tab of a spreadsheet.
type SheetInfo struct {
	SheetID int64  `json:"sheetId"`
	Title   string `json:"title"`
	Index   int64  `json:"index"`
}

// Spreadsheet is the spreadsheet title plus its tabs.
type Spreadsheet struct {
	SpreadsheetID string      `json:"spreadsheetId"`
	Title         string      `json:"title"`
	Sheets        []SheetInfo `json:"sheets"`
}

// ValueRange is a rectangular (possibly jagged) block of cell values.
// Cells hold strings, numbers or booleans.
type ValueRange struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

// UpdateResult summarizes a values write.
type UpdateResult struct {
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int64  `json:"updatedRows"`
	UpdatedColumns int64  `json:"updatedColumns"`
	UpdatedCells   int64  `json:"updatedCells"`
}

// AppendResult summarizes a values append.
type AppendResult struct {
	SpreadsheetID string `json:"spreadsheetId"`
	TableRange    string `json:"tableRange"`
	UpdatedRange  string `json:"updatedRange"`
	UpdatedRows   int64  `json:"updatedRows"`
	UpdatedCells  int64  `json:"updatedCells"`
}
