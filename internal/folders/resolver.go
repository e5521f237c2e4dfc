package folders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sekolahweb/drivestore/internal/drive"
)

// ErrInvalidName is returned when a folder name sanitizes to nothing.
var ErrInvalidName = errors.New("folder name is empty after sanitizing")

// driveAPI is the slice of the Drive client the resolver needs.
type driveAPI interface {
	FindFolders(ctx context.Context, name, parentID string) ([]drive.Folder, error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	ListFolders(ctx context.Context, parentID string) ([]drive.Folder, error)
	Delete(ctx context.Context, fileID string) error
	Rename(ctx context.Context, fileID, newName string) error
}

// Resolver maps folder paths to remote folder IDs. Paths are walked
// left to right from the configured root; each segment is searched by
// name and created when absent. Drive does not enforce name uniqueness,
// so a path segment can match several folders; the resolver tolerates
// that by picking the first match and logging the ambiguity.
type Resolver struct {
	api    driveAPI
	rootID string
	logger *slog.Logger
}

// NewResolver creates a Resolver anchored at rootID. An empty rootID
// anchors at the Drive root.
func NewResolver(api driveAPI, rootID string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{api: api, rootID: rootID, logger: logger}
}

// Resolve walks the path segments from the root, creating any segment
// that does not exist, and returns the ID of the final folder.
func (r *Resolver) Resolve(ctx context.Context, segments ...string) (string, error) {
	return r.walk(ctx, true, segments)
}

// Lookup walks the path segments without creating anything. Returns
// drive.ErrNotFound if any segment is absent.
func (r *Resolver) Lookup(ctx context.Context, segments ...string) (string, error) {
	return r.walk(ctx, false, segments)
}

func (r *Resolver) walk(ctx context.Context, create bool, segments []string) (string, error) {
	parentID := r.rootID

	for _, raw := range segments {
		name := SanitizeName(raw)
		if name == "" {
			return "", fmt.Errorf("segment %q: %w", raw, ErrInvalidName)
		}

		matches, err := r.api.FindFolders(ctx, name, parentID)
		if err != nil {
			return "", fmt.Errorf("resolving %q: %w", name, err)
		}

		switch {
		case len(matches) == 0 && !create:
			return "", fmt.Errorf("folder %q: %w", name, drive.ErrNotFound)

		case len(matches) == 0:
			id, err := r.api.CreateFolder(ctx, name, parentID)
			if err != nil {
				return "", fmt.Errorf("creating %q: %w", name, err)
			}

			parentID = id

		case len(matches) > 1:
			r.logger.Warn("ambiguous folder name, using first match",
				slog.String("name", name),
				slog.String("parent_id", parentID),
				slog.Int("matches", len(matches)),
			)

			fallthrough

		default:
			parentID = matches[0].ID
		}
	}

	return parentID, nil
}

// Rename renames the folder called oldName under the given parent path.
// If the new name is already taken under the parent the rename fails
// with drive.ErrConflict rather than producing a second folder whose
// contents would be indistinguishable from the existing one's. When no
// folder carries the old name, a best-effort heuristic applies: a
// parent with exactly one child folder is assumed to hold the target
// under a stale title. Several old-name matches, or an old-name miss
// among several children, fails closed with drive.ErrNotFound instead
// of guessing.
func (r *Resolver) Rename(ctx context.Context, parentSegments []string, oldName, newName string) error {
	oldName = SanitizeName(oldName)

	newName = SanitizeName(newName)
	if newName == "" {
		return fmt.Errorf("new name: %w", ErrInvalidName)
	}

	parentID, err := r.Lookup(ctx, parentSegments...)
	if err != nil {
		return err
	}

	taken, err := r.api.FindFolders(ctx, newName, parentID)
	if err != nil {
		return fmt.Errorf("checking %q: %w", newName, err)
	}

	if len(taken) > 0 {
		return fmt.Errorf("folder %q already exists: %w", newName, drive.ErrConflict)
	}

	target, err := r.findRenameTarget(ctx, parentID, oldName)
	if err != nil {
		return err
	}

	if err := r.api.Rename(ctx, target, newName); err != nil {
		return fmt.Errorf("renaming %q: %w", oldName, err)
	}

	r.logger.Info("renamed folder",
		slog.String("old_name", oldName),
		slog.String("new_name", newName),
		slog.String("folder_id", target),
	)

	return nil
}

func (r *Resolver) findRenameTarget(ctx context.Context, parentID, oldName string) (string, error) {
	matches, err := r.api.FindFolders(ctx, oldName, parentID)
	if err != nil {
		return "", fmt.Errorf("locating %q: %w", oldName, err)
	}

	switch {
	case len(matches) == 1:
		return matches[0].ID, nil

	case len(matches) > 1:
		return "", fmt.Errorf("folder %q has %d namesakes: %w", oldName, len(matches), drive.ErrNotFound)
	}

	// Old name missed. The title may have been edited out of band; if
	// the parent holds exactly one folder it can only be the target.
	children, err := r.api.ListFolders(ctx, parentID)
	if err != nil {
		return "", fmt.Errorf("listing candidates for %q: %w", oldName, err)
	}

	if len(children) != 1 {
		return "", fmt.Errorf("folder %q: %w", oldName, drive.ErrNotFound)
	}

	r.logger.Warn("rename target not found by name, assuming sole child folder",
		slog.String("old_name", oldName),
		slog.String("assumed_name", children[0].Name),
		slog.String("folder_id", children[0].ID),
	)

	return children[0].ID, nil
}

// DeleteTree removes the folder at the given path along with its
// contents. A path that does not exist is a no-op: the desired end
// state is already true.
func (r *Resolver) DeleteTree(ctx context.Context, segments ...string) error {
	folderID, err := r.Lookup(ctx, segments...)
	if errors.Is(err, drive.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := r.api.Delete(ctx, folderID); err != nil {
		if errors.Is(err, drive.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("deleting folder tree: %w", err)
	}

	return nil
}

// ListContainers returns the child folders of the given path.
func (r *Resolver) ListContainers(ctx context.Context, segments ...string) ([]drive.Folder, error) {
	parentID, err := r.Lookup(ctx, segments...)
	if err != nil {
		return nil, err
	}

	return r.api.ListFolders(ctx, parentID)
}
