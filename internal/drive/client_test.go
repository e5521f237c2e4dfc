package drive

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := New(context.Background(), logger,
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	return c
}

func TestFindFolders(t *testing.T) {
	var gotQuery string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"files": [{"id": "folder1", "name": "Staff Photos"}, {"id": "folder2", "name": "Staff Photos"}]}`))
	})

	folders, err := c.FindFolders(context.Background(), "Staff Photos", "root123")
	require.NoError(t, err)

	require.Len(t, folders, 2)
	assert.Equal(t, Folder{ID: "folder1", Name: "Staff Photos"}, folders[0])
	assert.Equal(t, Folder{ID: "folder2", Name: "Staff Photos"}, folders[1])

	assert.Contains(t, gotQuery, "name='Staff Photos'")
	assert.Contains(t, gotQuery, "mimeType='application/vnd.google-apps.folder'")
	assert.Contains(t, gotQuery, "trashed=false")
	assert.Contains(t, gotQuery, "'root123' in parents")
}

func TestFindFolders_NoParent(t *testing.T) {
	var gotQuery string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"files": []}`))
	})

	folders, err := c.FindFolders(context.Background(), "Documents", "")
	require.NoError(t, err)

	assert.Empty(t, folders)
	assert.NotContains(t, gotQuery, "in parents")
}

func TestFindFolders_EscapesQuotes(t *testing.T) {
	var gotQuery string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"files": []}`))
	})

	_, err := c.FindFolders(context.Background(), "Parents' Day", "")
	require.NoError(t, err)

	assert.Contains(t, gotQuery, `name='Parents\' Day'`)
}

func TestListFolders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"files": [{"id": "g1", "name": "Sports Day"}, {"id": "g2", "name": "Graduation"}]}`))
	})

	folders, err := c.ListFolders(context.Background(), "galleriesRoot")
	require.NoError(t, err)

	require.Len(t, folders, 2)
	assert.Equal(t, "Sports Day", folders[0].Name)
	assert.Equal(t, "Graduation", folders[1].Name)
}

func TestCreateFolder(t *testing.T) {
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "newfolder"}`))
	})

	id, err := c.CreateFolder(context.Background(), "Student Photos", "root123")
	require.NoError(t, err)
	assert.Equal(t, "newfolder", id)

	assert.Equal(t, "Student Photos", gotBody["name"])
	assert.Equal(t, "application/vnd.google-apps.folder", gotBody["mimeType"])
	assert.Equal(t, []any{"root123"}, gotBody["parents"])
}

func TestCreateFile(t *testing.T) {
	var gotPath, gotContent string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotContent = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "file123"}`))
	})

	id, err := c.CreateFile(context.Background(), "1756700000_photo.jpg", "folder1",
		"image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "file123", id)
	assert.Contains(t, gotPath, "/files")
	assert.Contains(t, gotContent, "jpeg-bytes")
	assert.Contains(t, gotContent, "1756700000_photo.jpg")
}

func TestAllowPublicRead(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "perm1"}`))
	})

	err := c.AllowPublicRead(context.Background(), "file123")
	require.NoError(t, err)

	assert.Contains(t, gotPath, "/files/file123/permissions")
	assert.Equal(t, "reader", gotBody["role"])
	assert.Equal(t, "anyone", gotBody["type"])
}

func TestDelete(t *testing.T) {
	var gotMethod, gotPath string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Delete(context.Background(), "file123")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Contains(t, gotPath, "/files/file123")
}

func TestDelete_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "File not found"}}`))
	})

	err := c.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestRename(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "folder1"}`))
	})

	err := c.Rename(context.Background(), "folder1", "Annual Gala")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Contains(t, gotPath, "/files/folder1")
	assert.Equal(t, "Annual Gala", gotBody["name"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"conflict", http.StatusConflict, ErrConflict},
		{"rate limited", http.StatusTooManyRequests, ErrUnavailable},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "` + http.StatusText(tt.status) + `"}}`))
			})

			_, err := c.FindFolders(context.Background(), "x", "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, "plain", escapeQuery("plain"))
	assert.Equal(t, `it\'s`, escapeQuery("it's"))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
}
