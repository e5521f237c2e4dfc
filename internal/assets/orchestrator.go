package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/sekolahweb/drivestore/internal/drive"
	"github.com/sekolahweb/drivestore/internal/urlcodec"
)

// ErrNotContainer is returned when a container operation is invoked on
// a category whose assets do not live in owner-named containers.
var ErrNotContainer = errors.New("category has no container folder")

// StoreError wraps the failure of a hard-fail store so callers can tell
// "remote write failed and there is no asset" apart from plumbing
// errors.
type StoreError struct {
	Category Category
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storing %s asset: %v", e.Category, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// File is an asset to store: the original filename, its MIME type, and
// the full content. Content is held in memory because a failed remote
// attempt must be replayable against local storage.
type File struct {
	Name    string
	MIME    string
	Content []byte
}

// resolver is the slice of the folder resolver the orchestrator needs.
type resolver interface {
	Resolve(ctx context.Context, segments ...string) (string, error)
	Rename(ctx context.Context, parentSegments []string, oldName, newName string) error
	DeleteTree(ctx context.Context, segments ...string) error
	ListContainers(ctx context.Context, segments ...string) ([]drive.Folder, error)
}

// uploader is the slice of the Drive client the orchestrator needs.
type uploader interface {
	CreateFile(ctx context.Context, name, parentID, mimeType string, content io.Reader) (string, error)
	AllowPublicRead(ctx context.Context, fileID string) error
	Delete(ctx context.Context, fileID string) error
}

// fallback is the slice of the local store the orchestrator needs.
type fallback interface {
	Save(subdir, name string, content io.Reader) (string, error)
	Delete(url string) error
	Exists(url string) bool
	IsLocal(url string) bool
	URL(subdir, name string) string
}

// Orchestrator composes the folder resolver, Drive client, URL codec,
// and local fallback store into the store/replace/delete operations the
// business layer calls. All calls are synchronous; failures are either
// degraded to local storage or surfaced, per the category's policy,
// never retried.
type Orchestrator struct {
	resolver resolver
	remote   uploader
	local    fallback
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrchestrator wires an Orchestrator.
func NewOrchestrator(res resolver, remote uploader, local fallback, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		resolver: res,
		remote:   remote,
		local:    local,
		logger:   logger,
		now:      time.Now,
	}
}

// Store uploads a file under its category's folder path and returns the
// canonical URL to persist. On remote failure a FallbackToLocal
// category returns a local URL instead; a HardFail category returns a
// *StoreError.
func (o *Orchestrator) Store(ctx context.Context, cat Category, owner OwnerContext, file File) (string, error) {
	desc, err := Lookup(cat)
	if err != nil {
		return "", err
	}

	segments, err := desc.Segments(owner)
	if err != nil {
		return "", fmt.Errorf("building folder path for %s: %w", cat, err)
	}

	name := o.remoteName(desc, file.Name)

	url, err := o.storeRemote(ctx, desc, segments, name, file)
	if err == nil {
		o.logger.Info("stored asset remotely",
			slog.String("category", string(cat)),
			slog.String("name", name),
			slog.String("url", url),
		)

		return url, nil
	}

	o.logger.Error("remote store failed",
		slog.String("category", string(cat)),
		slog.Any("owner", owner),
		slog.String("policy", desc.Policy.String()),
		slog.Any("error", err),
	)

	if desc.Policy == HardFail {
		return "", &StoreError{Category: cat, Err: err}
	}

	localURL, lerr := o.local.Save(desc.LocalDir, name, bytes.NewReader(file.Content))
	if lerr != nil {
		return "", &StoreError{Category: cat, Err: errors.Join(err, lerr)}
	}

	o.logger.Warn("stored asset locally after remote failure",
		slog.String("category", string(cat)),
		slog.String("url", localURL),
	)

	return localURL, nil
}

func (o *Orchestrator) storeRemote(ctx context.Context, desc Descriptor, segments []string, name string, file File) (string, error) {
	folderID, err := o.resolver.Resolve(ctx, segments...)
	if err != nil {
		return "", err
	}

	fileID, err := o.remote.CreateFile(ctx, name, folderID, file.MIME, bytes.NewReader(file.Content))
	if err != nil {
		return "", err
	}

	if err := o.remote.AllowPublicRead(ctx, fileID); err != nil {
		// The file exists but is unreadable, so the URL would be dead.
		// Clean up before reporting failure.
		if derr := o.remote.Delete(ctx, fileID); derr != nil {
			o.logger.Error("removing unreadable upload",
				slog.String("file_id", fileID),
				slog.Any("error", derr),
			)
		}

		return "", err
	}

	return urlcodec.Encode(fileID, desc.Kind), nil
}

// remoteName builds a collision-resistant filename: optional category
// prefix, upload timestamp, original name.
func (o *Orchestrator) remoteName(desc Descriptor, original string) string {
	return fmt.Sprintf("%s%d_%s", desc.FilenamePrefix, o.now().Unix(), original)
}

// Delete removes the asset behind a URL. Remote-backed URLs are deleted
// by decoded ID; anything else is treated as a local path. Returns
// whether an asset was actually removed: deleting what is already gone
// is success with removed=false.
func (o *Orchestrator) Delete(ctx context.Context, cat Category, url string) (bool, error) {
	if url == "" {
		return false, nil
	}

	if fileID := urlcodec.Decode(url); fileID != "" {
		err := o.remote.Delete(ctx, fileID)
		if errors.Is(err, drive.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("deleting %s asset %s: %w", cat, fileID, err)
		}

		o.logger.Info("deleted remote asset",
			slog.String("category", string(cat)),
			slog.String("file_id", fileID),
		)

		return true, nil
	}

	return o.deleteLocal(cat, url)
}

func (o *Orchestrator) deleteLocal(cat Category, url string) (bool, error) {
	target := url

	// Legacy rows may hold a bare filename instead of a store URL;
	// rebuild the store location from the category's local directory.
	if !o.local.IsLocal(url) {
		desc, err := Lookup(cat)
		if err != nil {
			return false, err
		}

		target = o.local.URL(desc.LocalDir, path.Base(url))
	}

	existed := o.local.Exists(target)

	if err := o.local.Delete(target); err != nil {
		return false, fmt.Errorf("deleting local %s asset: %w", cat, err)
	}

	if existed {
		o.logger.Info("deleted local asset",
			slog.String("category", string(cat)),
			slog.String("url", target),
		)
	}

	return existed, nil
}

// Replace stores the new file first and only then best-effort deletes
// the old asset, so a failed store never leaves the owner with nothing.
func (o *Orchestrator) Replace(ctx context.Context, cat Category, owner OwnerContext, file File, oldURL string) (string, error) {
	url, err := o.Store(ctx, cat, owner, file)
	if err != nil {
		return "", err
	}

	if _, derr := o.Delete(ctx, cat, oldURL); derr != nil {
		o.logger.Warn("replaced asset but old copy remains",
			slog.String("category", string(cat)),
			slog.String("old_url", oldURL),
			slog.Any("error", derr),
		)
	}

	return url, nil
}

// RenameContainer renames a category's owner-named container folder,
// e.g. a gallery's folder when its title changes.
func (o *Orchestrator) RenameContainer(ctx context.Context, cat Category, oldName, newName string) error {
	desc, err := Lookup(cat)
	if err != nil {
		return err
	}

	if desc.ContainerParent == nil {
		return fmt.Errorf("%s: %w", cat, ErrNotContainer)
	}

	return o.resolver.Rename(ctx, desc.ContainerParent, oldName, newName)
}

// DeleteContainer removes a category's owner-named container folder and
// everything inside it. Missing containers are a no-op.
func (o *Orchestrator) DeleteContainer(ctx context.Context, cat Category, name string) error {
	desc, err := Lookup(cat)
	if err != nil {
		return err
	}

	if desc.ContainerParent == nil {
		return fmt.Errorf("%s: %w", cat, ErrNotContainer)
	}

	segments := append(append([]string{}, desc.ContainerParent...), name)

	return o.resolver.DeleteTree(ctx, segments...)
}

// ListContainers lists a category's container folders, e.g. all gallery
// folders.
func (o *Orchestrator) ListContainers(ctx context.Context, cat Category) ([]drive.Folder, error) {
	desc, err := Lookup(cat)
	if err != nil {
		return nil, err
	}

	if desc.ContainerParent == nil {
		return nil, fmt.Errorf("%s: %w", cat, ErrNotContainer)
	}

	return o.resolver.ListContainers(ctx, desc.ContainerParent...)
}
