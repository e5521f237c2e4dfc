// Package urlcodec maps Google Drive file IDs to the public URL shapes the
// application hands out, and parses any historically emitted shape back to
// the file ID. The URL string persisted on a business entity is the only
// durable record of a file's remote identity, so Decode must remain a
// superset of Encode forever: once a shape has been written to the database
// its pattern can never be removed from the decode list.
package urlcodec

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind selects the canonical URL shape written for a newly stored file.
type Kind int

const (
	// Display is the googleusercontent viewer URL, the most reliable shape
	// for embedding images (no CORS redirect chain).
	Display Kind = iota
	// Download is the direct-download URL used for documents.
	Download
	// View is the Drive web viewer URL used for work files opened in the
	// browser rather than embedded.
	View
)

func (k Kind) String() string {
	switch k {
	case Display:
		return "display"
	case Download:
		return "download"
	case View:
		return "view"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Encode renders the canonical URL for a file ID in the given kind.
func Encode(fileID string, kind Kind) string {
	switch kind {
	case Download:
		return "https://drive.google.com/uc?id=" + fileID
	case View:
		return "https://drive.google.com/file/d/" + fileID + "/view"
	default:
		return "https://lh3.googleusercontent.com/d/" + fileID
	}
}

// FolderURL returns the Drive web URL for a folder ID. Shown to operators
// so they can open a provisioned folder directly.
func FolderURL(folderID string) string {
	return "https://drive.google.com/drive/folders/" + folderID
}

// ThumbnailURL returns a googleusercontent URL with size constraints,
// suitable for grid views.
func ThumbnailURL(fileID string, width, height int) string {
	return fmt.Sprintf("https://lh3.googleusercontent.com/d/%s=w%d-h%d-c", fileID, width, height)
}

// decodePatterns is the ordered list of every URL shape the application has
// ever written, newest first. Each pattern captures the file ID in group 1.
// Order matters: the query-parameter pattern would also match inside longer
// URLs, so the more specific path shapes are tried before it.
var decodePatterns = []*regexp.Regexp{
	// https://lh3.googleusercontent.com/d/FILE_ID
	regexp.MustCompile(`lh3\.googleusercontent\.com/d/([a-zA-Z0-9_-]+)`),
	// https://drive.google.com/file/d/FILE_ID/view
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)/`),
	// https://drive.google.com/uc?id=FILE_ID or ...&id=FILE_ID
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
}

// Decode extracts the Drive file ID from any URL shape the application has
// emitted. Returns "" when the string is not a Drive-backed URL — callers
// treat that as "locally stored asset", not as an error.
func Decode(rawURL string) string {
	if !IsRemote(rawURL) {
		return ""
	}

	for _, re := range decodePatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}

	return ""
}

// IsRemote reports whether the URL points at the remote provider rather
// than local storage. Host-based so that relative local paths ("/storage/x")
// and foreign absolute URLs are both rejected.
func IsRemote(rawURL string) bool {
	return strings.Contains(rawURL, "drive.google.com") ||
		strings.Contains(rawURL, "googleusercontent.com")
}
