package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// folderMimeType is the Drive MIME type marking an item as a folder.
const folderMimeType = "application/vnd.google-apps.folder"

// searchFields limits list responses to the fields the resolver needs.
const searchFields = "files(id, name)"

// Folder is a Drive folder as returned by name+parent search.
type Folder struct {
	ID   string
	Name string
}

// Client is a thin wrapper around the Drive v3 service.
type Client struct {
	svc    *drive.Service
	logger *slog.Logger
}

// New creates a Drive client. Production callers pass
// option.WithHTTPClient with an OAuth-authenticated client from the
// credential manager; tests add option.WithEndpoint and
// option.WithoutAuthentication to point at an httptest server.
func New(ctx context.Context, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive: creating service: %w", err)
	}

	return &Client{svc: svc, logger: logger}, nil
}

// escapeQuery escapes a string literal for interpolation into a Drive
// search query. Backslashes and single quotes are the only characters with
// meaning inside a quoted term.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)

	return strings.ReplaceAll(s, `'`, `\'`)
}

// FindFolders returns all non-trashed folders with the exact name under the
// given parent. parentID may be empty, in which case the search is not
// constrained to a parent (matches the provider's whole tree). More than one
// result is possible: name uniqueness is not enforced by Drive.
func (c *Client) FindFolders(ctx context.Context, name, parentID string) ([]Folder, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), folderMimeType)
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}

	r, err := c.svc.Files.List().
		Q(q).
		Fields(googleapi.Field(searchFields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError("searching folders", err)
	}

	folders := make([]Folder, 0, len(r.Files))
	for _, f := range r.Files {
		folders = append(folders, Folder{ID: f.Id, Name: f.Name})
	}

	c.logger.Debug("folder search",
		slog.String("name", name),
		slog.String("parent_id", parentID),
		slog.Int("matches", len(folders)),
	)

	return folders, nil
}

// ListFolders returns all non-trashed child folders of the given parent.
func (c *Client) ListFolders(ctx context.Context, parentID string) ([]Folder, error) {
	q := fmt.Sprintf("mimeType='%s' and trashed=false", folderMimeType)
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}

	r, err := c.svc.Files.List().
		Q(q).
		Fields(googleapi.Field(searchFields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError("listing folders", err)
	}

	folders := make([]Folder, 0, len(r.Files))
	for _, f := range r.Files {
		folders = append(folders, Folder{ID: f.Id, Name: f.Name})
	}

	return folders, nil
}

// CreateFolder creates a folder under the given parent and returns its ID.
// parentID may be empty to create at the Drive root.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	f, err := c.svc.Files.Create(meta).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", mapError("creating folder", err)
	}

	c.logger.Info("created folder",
		slog.String("name", name),
		slog.String("parent_id", parentID),
		slog.String("folder_id", f.Id),
	)

	return f.Id, nil
}

// CreateFile uploads content as a new file under the given parent folder
// and returns the file ID.
func (c *Client) CreateFile(ctx context.Context, name, parentID, mimeType string, content io.Reader) (string, error) {
	meta := &drive.File{Name: name}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	f, err := c.svc.Files.Create(meta).
		Media(content, googleapi.ContentType(mimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", mapError("creating file", err)
	}

	c.logger.Info("uploaded file",
		slog.String("name", name),
		slog.String("parent_id", parentID),
		slog.String("file_id", f.Id),
	)

	return f.Id, nil
}

// AllowPublicRead grants world-readable access to a file so the public URL
// shapes resolve without authentication.
func (c *Client) AllowPublicRead(ctx context.Context, fileID string) error {
	perm := &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}

	_, err := c.svc.Permissions.Create(fileID, perm).Context(ctx).Do()
	if err != nil {
		return mapError("granting public read", err)
	}

	return nil
}

// Delete removes a file or folder by ID. Deleting a folder removes its
// contents recursively on the provider side.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	if err := c.svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return mapError("deleting item", err)
	}

	c.logger.Info("deleted item", slog.String("file_id", fileID))

	return nil
}

// Rename changes the name of a file or folder.
func (c *Client) Rename(ctx context.Context, fileID, newName string) error {
	meta := &drive.File{Name: newName}

	if _, err := c.svc.Files.Update(fileID, meta).Fields("id").Context(ctx).Do(); err != nil {
		return mapError("renaming item", err)
	}

	c.logger.Info("renamed item",
		slog.String("file_id", fileID),
		slog.String("new_name", newName),
	)

	return nil
}
