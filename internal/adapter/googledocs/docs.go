// Package googledocs implements adapter.DocsGateway with the Docs v1 API.
package googledocs

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/jun/gophdrive/gateway/internal/adapter"
	"github.com/jun/gophdrive/gateway/internal/model"
)

type Gateway struct {
	creds adapter.CredentialSource
	opts  []option.ClientOption
}

var _ adapter.DocsGateway = (*Gateway)(nil)

func NewGateway(creds adapter.CredentialSource, opts ...option.ClientOption) *Gateway {
	return &Gateway{creds: creds, opts: opts}
}

func (g *Gateway) service(ctx context.Context) (*docs.Service, error) {
	client, err := g.creds.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, g.opts...)
	srv, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Docs client: %w", err)
	}
	return srv, nil
}

// ExtractPlainText concatenates the text runs of every paragraph in order.
// Tables, section breaks and other non-paragraph elements are skipped.
func ExtractPlainText(body *docs.Body) string {
	if body == nil {
		return ""
	}
	var sb strings.Builder
	for _, el := range body.Content {
		if el.Paragraph == nil {
			continue
		}
		for _, pe := range el.Paragraph.Elements {
			if pe.TextRun != nil {
				sb.WriteString(pe.TextRun.Content)
			}
		}
	}
	return sb.String()
}

// insertionIndex is the position just before the body's final newline.
func insertionIndex(body *docs.Body) int64 {
	if body == nil || len(body.Content) == 0 {
		return 1
	}
	idx := body.Content[len(body.Content)-1].EndIndex - 1
	if idx < 1 {
		return 1
	}
	return idx
}

func (g *Gateway) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := srv.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return nil, adapter.RemoteAPI("docs.documents.get", err)
	}
	return &model.Document{
		DocumentID: doc.DocumentId,
		Title:      doc.Title,
		PlainText:  ExtractPlainText(doc.Body),
		RevisionID: doc.RevisionId,
	}, nil
}

func (g *Gateway) CreateDocument(ctx context.Context, title string) (*model.CreatedDocument, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := srv.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, adapter.RemoteAPI("docs.documents.create", err)
	}
	return &model.CreatedDocument{DocumentID: doc.DocumentId, Title: doc.Title}, nil
}

// AppendText reads only the body structure to find the end of the document,
// then inserts "\n"+text there in a single batch update.
func (g *Gateway) AppendText(ctx context.Context, documentID, text string) (int, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return 0, err
	}
	doc, err := srv.Documents.Get(documentID).Fields("body.content").Context(ctx).Do()
	if err != nil {
		return 0, adapter.RemoteAPI("docs.documents.get", err)
	}

	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Text:     "\n" + text,
				Location: &docs.Location{Index: insertionIndex(doc.Body)},
			},
		}},
	}
	resp, err := srv.Documents.BatchUpdate(documentID, req).Context(ctx).Do()
	if err != nil {
		return 0, adapter.RemoteAPI("docs.documents.batchUpdate", err)
	}
	return len(resp.Replies), nil
}

func (g *Gateway) ReplaceText(ctx context.Context, documentID, search, replacement string) error {
	srv, err := g.service(ctx)
	if err != nil {
		return err
	}
	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{Text: search, MatchCase: false},
				ReplaceText:  replacement,
			},
		}},
	}
	if _, err := srv.Documents.BatchUpdate(documentID, req).Context(ctx).Do(); err != nil {
		return adapter.RemoteAPI("docs.documents.batchUpdate", err)
	}
	return nil
}
