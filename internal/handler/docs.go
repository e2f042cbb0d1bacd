package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/gophdrive/gateway/internal/adapter"
)

const defaultDocumentTitle = "Untitled Document"

// DocsHandler serves /docs endpoints.
type DocsHandler struct {
	docs adapter.DocsGateway
}

func NewDocsHandler(docs adapter.DocsGateway) *DocsHandler {
	return &DocsHandler{docs: docs}
}

func (h *DocsHandler) Get(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	doc, err := h.docs.GetDocument(ctx, id)
	if err != nil {
		return errorResponse("get document "+id, err), nil
	}
	return jsonResponse(http.StatusOK, doc), nil
}

func (h *DocsHandler) Create(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var in struct {
		Title string `json:"title"`
	}
	if err := decodeBody(req, &in); err != nil {
		return errorResponse("create document", err), nil
	}
	if in.Title == "" {
		in.Title = defaultDocumentTitle
	}
	doc, err := h.docs.CreateDocument(ctx, in.Title)
	if err != nil {
		return errorResponse("create document", err), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{
		"documentId": doc.DocumentID,
		"title":      doc.Title,
		"message":    "Document created successfully",
	}), nil
}

func (h *DocsHandler) Append(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeBody(req, &in); err != nil {
		return errorResponse("append text", err), nil
	}
	if strings.TrimSpace(in.Text) == "" {
		return badRequest("text field is required"), nil
	}
	replies, err := h.docs.AppendText(ctx, id, in.Text)
	if err != nil {
		return errorResponse("append text to "+id, err), nil
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"documentId": id,
		"message":    "Text appended successfully",
		"replies":    replies,
	}), nil
}

func (h *DocsHandler) Replace(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	var in struct {
		Search      *string `json:"search"`
		Replacement *string `json:"replacement"`
	}
	if err := decodeBody(req, &in); err != nil {
		return errorResponse("replace text", err), nil
	}
	if in.Search == nil || *in.Search == "" || in.Replacement == nil {
		return badRequest("search and replacement fields are required"), nil
	}
	if err := h.docs.ReplaceText(ctx, id, *in.Search, *in.Replacement); err != nil {
		return errorResponse("replace text in "+id, err), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{
		"documentId": id,
		"message":    "Text replaced successfully",
	}), nil
}
