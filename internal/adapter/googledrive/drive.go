package googledrive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jun/gophdrive/gateway/internal/adapter"
	"github.com/jun/gophdrive/gateway/internal/model"
)

const (
	defaultPageSize = 100
	fileFields      = "id,name,mimeType,size,createdTime,modifiedTime,webViewLink,webContentLink,parents,trashed"
	listFields      = "nextPageToken,files(" + fileFields + ")"
	listOrder       = "folder,modifiedTime desc"
)

// Gateway implements adapter.DriveGateway on top of the Drive v3 API.
// A service is built per call from the current credential.
type Gateway struct {
	creds        adapter.CredentialSource
	rootFolderID string
	opts         []option.ClientOption
}

var _ adapter.DriveGateway = (*Gateway)(nil)

// NewGateway creates a Drive gateway. rootFolderID scopes listings that do
// not name a folder; it may be empty. opts are appended to every service
// (tests use them to point at a fake endpoint).
func NewGateway(creds adapter.CredentialSource, rootFolderID string, opts ...option.ClientOption) *Gateway {
	return &Gateway{creds: creds, rootFolderID: rootFolderID, opts: opts}
}

func (g *Gateway) RootFolderID() string {
	return g.rootFolderID
}

func (g *Gateway) service(ctx context.Context) (*drive.Service, error) {
	client, err := g.creds.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, g.opts...)
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive client: %w", err)
	}
	return srv, nil
}

// escapeQuery escapes a value for use inside a single-quoted Drive query literal.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// buildQuery assembles the Drive search expression. folderID falls back to
// the configured root when empty.
func buildQuery(folderID, rootFolderID, name string) string {
	clauses := []string{"trashed = false"}
	if folderID == "" {
		folderID = rootFolderID
	}
	if folderID != "" {
		clauses = append(clauses, fmt.Sprintf("'%s' in parents", escapeQuery(folderID)))
	}
	if name != "" {
		clauses = append(clauses, fmt.Sprintf("name contains '%s'", escapeQuery(name)))
	}
	return strings.Join(clauses, " and ")
}

func toFileRecord(f *drive.File) model.FileRecord {
	return model.FileRecord{
		ID:             f.Id,
		Name:           f.Name,
		MIMEType:       f.MimeType,
		Size:           strconv.FormatInt(f.Size, 10),
		CreatedTime:    f.CreatedTime,
		ModifiedTime:   f.ModifiedTime,
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
		Parents:        strings.Join(f.Parents, ","),
		Trashed:        f.Trashed,
	}
}

// ListFiles lists one page of non-trashed files.
func (g *Gateway) ListFiles(ctx context.Context, opts adapter.ListOptions) (*model.FileList, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	call := srv.Files.List().
		PageSize(pageSize).
		Q(buildQuery(opts.FolderID, g.rootFolderID, opts.Query)).
		OrderBy(listOrder).
		Fields(googleapi.Field(listFields)).
		Context(ctx)
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	r, err := call.Do()
	if err != nil {
		return nil, adapter.RemoteAPI("drive.files.list", err)
	}

	list := &model.FileList{Files: make([]model.FileRecord, 0, len(r.Files)), NextPageToken: r.NextPageToken}
	for _, f := range r.Files {
		list.Files = append(list.Files, toFileRecord(f))
	}
	return list, nil
}

func (g *Gateway) GetFile(ctx context.Context, fileID string) (*model.FileRecord, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	f, err := srv.Files.Get(fileID).Fields(googleapi.Field(fileFields)).Context(ctx).Do()
	if err != nil {
		return nil, adapter.RemoteAPI("drive.files.get", err)
	}
	rec := toFileRecord(f)
	return &rec, nil
}

// DownloadFile reads the whole file body into memory.
func (g *Gateway) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, adapter.RemoteAPI("drive.files.download", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, adapter.RemoteAPI("drive.files.download", err)
	}
	return content, nil
}

func (g *Gateway) UploadFile(ctx context.Context, in adapter.UploadInput) (*model.FileRecord, error) {
	srv, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	meta := &drive.File{Name: in.Name, MimeType: in.ContentType}
	folderID := in.FolderID
	if folderID == "" {
		folderID = g.rootFolderID
	}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	call := srv.Files.Create(meta).Fields(googleapi.Field(fileFields)).Context(ctx)
	if in.ContentType != "" {
		call = call.Media(bytes.NewReader(in.Content), googleapi.ContentType(in.ContentType))
	} else {
		call = call.Media(bytes.NewReader(in.Content))
	}
	f, err := call.Do()
	if err != nil {
		return nil, adapter.RemoteAPI("drive.files.create", err)
	}
	rec := toFileRecord(f)
	return &rec, nil
}

func (g *Gateway) TrashFile(ctx context.Context, fileID string) error {
	srv, err := g.service(ctx)
	if err != nil {
		return err
	}
	_, err = srv.Files.Update(fileID, &drive.File{Trashed: true}).Fields("id").Context(ctx).Do()
	if err != nil {
		return adapter.RemoteAPI("drive.files.trash", err)
	}
	return nil
}

func (g *Gateway) DeleteFilePermanently(ctx context.Context, fileID string) error {
	srv, err := g.service(ctx)
	if err != nil {
		return err
	}
	if err := srv.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return adapter.RemoteAPI("drive.files.delete", err)
	}
	return nil
}
