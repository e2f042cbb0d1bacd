package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/gophdrive/gateway/internal/adapter"
)

const maxUploadMemory = 32 << 20

// DriveHandler serves /drive endpoints.
type DriveHandler struct {
	drive adapter.DriveGateway
}

func NewDriveHandler(drive adapter.DriveGateway) *DriveHandler {
	return &DriveHandler{drive: drive}
}

// optional renders "" as JSON null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (h *DriveHandler) Root(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	rootID := h.drive.RootFolderID()
	if rootID == "" {
		return jsonResponse(http.StatusOK, map[string]any{"rootFolderId": nil, "message": "No root folder configured"}), nil
	}
	folder, err := h.drive.GetFile(ctx, rootID)
	if err != nil {
		// The ID alone is still useful to the client.
		if adapter.IsNotFound(err) {
			log.Printf("[drive] configured root folder %s does not exist", rootID)
		} else {
			log.Printf("[drive] root folder metadata: %v", err)
		}
		return jsonResponse(http.StatusOK, map[string]any{"rootFolderId": rootID}), nil
	}
	return jsonResponse(http.StatusOK, map[string]any{"rootFolderId": rootID, "folder": folder}), nil
}

func (h *DriveHandler) ListFiles(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	q := req.QueryStringParameters
	opts := adapter.ListOptions{
		PageToken: q["pageToken"],
		Query:     q["query"],
		FolderID:  q["folderId"],
	}
	if ps := q["pageSize"]; ps != "" {
		n, err := strconv.ParseInt(ps, 10, 64)
		if err != nil || n <= 0 {
			return badRequest("pageSize must be a positive integer"), nil
		}
		opts.PageSize = n
	}

	list, err := h.drive.ListFiles(ctx, opts)
	if err != nil {
		return errorResponse("list files", err), nil
	}
	folderID := opts.FolderID
	if folderID == "" {
		folderID = h.drive.RootFolderID()
	}
	body := map[string]any{
		"files":    list.Files,
		"count":    len(list.Files),
		"folderId": optional(folderID),
	}
	if list.NextPageToken != "" {
		body["nextPageToken"] = list.NextPageToken
	}
	return jsonResponse(http.StatusOK, body), nil
}

func (h *DriveHandler) GetFile(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	f, err := h.drive.GetFile(ctx, req.PathParameters["id"])
	if err != nil {
		return errorResponse("get file "+req.PathParameters["id"], err), nil
	}
	return jsonResponse(http.StatusOK, f), nil
}

// Download returns the raw file. The proxy response carries it base64 encoded.
func (h *DriveHandler) Download(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	meta, err := h.drive.GetFile(ctx, id)
	if err != nil {
		return errorResponse("download file "+id, err), nil
	}
	content, err := h.drive.DownloadFile(ctx, id)
	if err != nil {
		return errorResponse("download file "+id, err), nil
	}
	contentType := meta.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":        contentType,
			"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": meta.Name}),
		},
		Body:            base64.StdEncoding.EncodeToString(content),
		IsBase64Encoded: true,
	}, nil
}

// rawBody returns the request body, decoding it when the proxy marked it base64.
func rawBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, adapter.Validationf("invalid base64 body: %v", err)
	}
	return b, nil
}

// parseUpload reads the "file" part and optional "folderId" field of a
// multipart/form-data body.
func parseUpload(req events.APIGatewayProxyRequest) (adapter.UploadInput, error) {
	var in adapter.UploadInput
	mediaType, params, err := mime.ParseMediaType(getHeader(req, "Content-Type"))
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
		return in, adapter.Validationf("expected multipart/form-data body")
	}
	body, err := rawBody(req)
	if err != nil {
		return in, err
	}
	form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(maxUploadMemory)
	if err != nil {
		return in, adapter.Validationf("invalid multipart body: %v", err)
	}
	defer form.RemoveAll()

	files := form.File["file"]
	if len(files) == 0 {
		return in, adapter.Validationf("file part is required")
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return in, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return in, fmt.Errorf("read upload: %w", err)
	}

	in.Name = fh.Filename
	in.ContentType = fh.Header.Get("Content-Type")
	in.Content = content
	if v := form.Value["folderId"]; len(v) > 0 {
		in.FolderID = v[0]
	}
	if in.FolderID == "" {
		in.FolderID = req.QueryStringParameters["folderId"]
	}
	return in, nil
}

func (h *DriveHandler) Upload(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	in, err := parseUpload(req)
	if err != nil {
		return errorResponse("parse upload", err), nil
	}
	f, err := h.drive.UploadFile(ctx, in)
	if err != nil {
		return errorResponse("upload file "+in.Name, err), nil
	}
	log.Printf("[drive] uploaded %s (%d bytes) as %s", in.Name, len(in.Content), f.ID)
	return jsonResponse(http.StatusOK, f), nil
}

func (h *DriveHandler) Delete(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	permanent := false
	if p := req.QueryStringParameters["permanent"]; p != "" {
		v, err := strconv.ParseBool(p)
		if err != nil {
			return badRequest("permanent must be true or false"), nil
		}
		permanent = v
	}

	msg := "File moved to trash"
	var err error
	if permanent {
		msg = "File permanently deleted"
		err = h.drive.DeleteFilePermanently(ctx, id)
	} else {
		err = h.drive.TrashFile(ctx, id)
	}
	if err != nil {
		return errorResponse("delete file "+id, err), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{"message": msg, "fileId": id}), nil
}
