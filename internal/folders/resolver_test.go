package folders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahweb/drivestore/internal/drive"
)

// fakeDrive is an in-memory folder tree keyed by "parentID/name".
type fakeDrive struct {
	folders map[string][]drive.Folder // parentID -> children
	nextID  int

	created []string // "parentID/name" in creation order
	deleted []string
	renamed map[string]string // folderID -> new name
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		folders: make(map[string][]drive.Folder),
		renamed: make(map[string]string),
	}
}

func (f *fakeDrive) add(parentID, name string) string {
	f.nextID++
	id := fmt.Sprintf("id%d", f.nextID)
	f.folders[parentID] = append(f.folders[parentID], drive.Folder{ID: id, Name: name})

	return id
}

func (f *fakeDrive) FindFolders(_ context.Context, name, parentID string) ([]drive.Folder, error) {
	var out []drive.Folder
	for _, c := range f.folders[parentID] {
		if c.Name == name {
			out = append(out, c)
		}
	}

	return out, nil
}

func (f *fakeDrive) CreateFolder(_ context.Context, name, parentID string) (string, error) {
	f.created = append(f.created, parentID+"/"+name)

	return f.add(parentID, name), nil
}

func (f *fakeDrive) ListFolders(_ context.Context, parentID string) ([]drive.Folder, error) {
	return f.folders[parentID], nil
}

func (f *fakeDrive) Delete(_ context.Context, fileID string) error {
	f.deleted = append(f.deleted, fileID)

	return nil
}

func (f *fakeDrive) Rename(_ context.Context, fileID, newName string) error {
	f.renamed[fileID] = newName

	return nil
}

func newTestResolver(fd *fakeDrive) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewResolver(fd, "root", logger)
}

func TestResolve_CreatesMissingSegments(t *testing.T) {
	fd := newFakeDrive()
	r := newTestResolver(fd)

	id, err := r.Resolve(context.Background(), "Galleries", "Sports Day", "items")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Equal(t, []string{"root/Galleries", "id1/Sports Day", "id2/items"}, fd.created)
}

func TestResolve_ReusesExistingSegments(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	sports := fd.add(galleries, "Sports Day")

	r := newTestResolver(fd)

	id, err := r.Resolve(context.Background(), "Galleries", "Sports Day")
	require.NoError(t, err)
	assert.Equal(t, sports, id)
	assert.Empty(t, fd.created)
}

func TestResolve_AmbiguousNameUsesFirst(t *testing.T) {
	fd := newFakeDrive()
	first := fd.add("root", "Documents")
	fd.add("root", "Documents")

	r := newTestResolver(fd)

	id, err := r.Resolve(context.Background(), "Documents")
	require.NoError(t, err)
	assert.Equal(t, first, id)
	assert.Empty(t, fd.created)
}

func TestResolve_SanitizesSegments(t *testing.T) {
	fd := newFakeDrive()
	r := newTestResolver(fd)

	_, err := r.Resolve(context.Background(), `Sports: "Day"`)
	require.NoError(t, err)

	assert.Equal(t, []string{"root/Sports Day"}, fd.created)
}

func TestResolve_EmptySegmentRejected(t *testing.T) {
	fd := newFakeDrive()
	r := newTestResolver(fd)

	_, err := r.Resolve(context.Background(), "Galleries", `///`)
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Len(t, fd.created, 1)
}

func TestLookup_DoesNotCreate(t *testing.T) {
	fd := newFakeDrive()
	r := newTestResolver(fd)

	_, err := r.Lookup(context.Background(), "Galleries")
	assert.ErrorIs(t, err, drive.ErrNotFound)
	assert.Empty(t, fd.created)
}

func TestRename_SingleCandidate(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	sports := fd.add(galleries, "Sports Day")

	r := newTestResolver(fd)

	err := r.Rename(context.Background(), []string{"Galleries"}, "Sports Day", "Field Day")
	require.NoError(t, err)
	assert.Equal(t, "Field Day", fd.renamed[sports])
}

func TestRename_OldNameMissSoleChildHeuristic(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	only := fd.add(galleries, "Stale Title")

	r := newTestResolver(fd)

	err := r.Rename(context.Background(), []string{"Galleries"}, "Sports Day", "Field Day")
	require.NoError(t, err)
	assert.Equal(t, "Field Day", fd.renamed[only])
}

func TestRename_OldNameMissManyChildrenFailsClosed(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	fd.add(galleries, "Stale Title")
	fd.add(galleries, "Another")

	r := newTestResolver(fd)

	err := r.Rename(context.Background(), []string{"Galleries"}, "Sports Day", "Field Day")
	assert.ErrorIs(t, err, drive.ErrNotFound)
	assert.Empty(t, fd.renamed)
}

func TestRename_AmbiguousOldNameFailsClosed(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	fd.add(galleries, "Sports Day")
	fd.add(galleries, "Sports Day")

	r := newTestResolver(fd)

	err := r.Rename(context.Background(), []string{"Galleries"}, "Sports Day", "Field Day")
	assert.ErrorIs(t, err, drive.ErrNotFound)
	assert.Empty(t, fd.renamed)
}

func TestRename_NewNameTakenConflicts(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	fd.add(galleries, "Sports Day")
	fd.add(galleries, "Field Day")

	r := newTestResolver(fd)

	err := r.Rename(context.Background(), []string{"Galleries"}, "Sports Day", "Field Day")
	assert.ErrorIs(t, err, drive.ErrConflict)
	assert.Empty(t, fd.renamed)
}

func TestRename_SanitizesNewName(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	sports := fd.add(galleries, "Sports Day")

	r := newTestResolver(fd)

	err := r.Rename(context.Background(), []string{"Galleries"}, "Sports Day", `Field/Day: 2026`)
	require.NoError(t, err)
	assert.Equal(t, "FieldDay 2026", fd.renamed[sports])
}

func TestDeleteTree(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	sports := fd.add(galleries, "Sports Day")

	r := newTestResolver(fd)

	require.NoError(t, r.DeleteTree(context.Background(), "Galleries", "Sports Day"))
	assert.Equal(t, []string{sports}, fd.deleted)
}

func TestDeleteTree_MissingIsNoop(t *testing.T) {
	fd := newFakeDrive()
	r := newTestResolver(fd)

	require.NoError(t, r.DeleteTree(context.Background(), "Galleries", "Missing"))
	assert.Empty(t, fd.deleted)
	assert.Empty(t, fd.created)
}

func TestListContainers(t *testing.T) {
	fd := newFakeDrive()
	galleries := fd.add("root", "Galleries")
	fd.add(galleries, "Sports Day")
	fd.add(galleries, "Graduation")

	r := newTestResolver(fd)

	out, err := r.ListContainers(context.Background(), "Galleries")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Sports Day", out[0].Name)
	assert.Equal(t, "Graduation", out[1].Name)
}
