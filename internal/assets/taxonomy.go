// Package assets is the entry point of the storage subsystem: it maps
// asset categories to their remote folder layout and failure policy,
// and orchestrates uploads, deletes, and container renames across the
// credential, folder, codec, and fallback layers.
package assets

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sekolahweb/drivestore/internal/urlcodec"
)

// Category identifies one kind of stored asset. The set is closed:
// adding a category means adding a taxonomy row, nothing else.
type Category string

const (
	StaffPhoto           Category = "staff-photo"
	StudentPhoto         Category = "student-photo"
	ExtracurricularPhoto Category = "extracurricular-photo"
	PostImage            Category = "post-image"
	NewsImage            Category = "news-image"
	PageImage            Category = "page-image"
	FacilityImage        Category = "facility-image"
	GalleryImage         Category = "gallery-image"
	GalleryItem          Category = "gallery-item"
	GalleryFeatured      Category = "gallery-featured"
	StudentDocument      Category = "student-document"
	TeacherWorkFile      Category = "teacher-work-file"
)

// Policy decides what happens when a remote store fails.
type Policy int

const (
	// FallbackToLocal degrades a failed remote store to local storage;
	// the caller gets a local URL instead of an error.
	FallbackToLocal Policy = iota

	// HardFail surfaces the failure. Used where a silent local copy
	// would be worse than no copy, e.g. official documents.
	HardFail
)

func (p Policy) String() string {
	if p == HardFail {
		return "hard-fail"
	}

	return "fallback-to-local"
}

// Owner context keys. Folder path templates substitute these values.
const (
	KeyGalleryTitle = "gallery_title"
	KeySubject      = "subject"
	KeySubjectCode  = "subject_code"
	KeyTeacher      = "teacher"
	KeyWorkItem     = "work_item"
)

// OwnerContext carries the business-entity names a category's folder
// path template substitutes. The orchestrator never reads business
// tables; callers supply the names.
type OwnerContext map[string]string

// ErrMissingContext is returned when a folder path template needs an
// owner context key the caller did not supply.
var ErrMissingContext = errors.New("missing owner context key")

func (o OwnerContext) get(key string) (string, error) {
	v, ok := o[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingContext, key)
	}

	return v, nil
}

// Descriptor is one taxonomy row: where a category's assets live
// remotely, how their URLs are encoded, what happens on failure, and
// where fallback copies go locally.
type Descriptor struct {
	// Segments materializes the remote folder path from owner context.
	Segments func(owner OwnerContext) ([]string, error)

	// ContainerParent is the path under which this category's
	// owner-named container folder lives. Only container-backed
	// categories (galleries) set it; it enables rename and
	// delete-container operations.
	ContainerParent []string

	// Kind is the canonical URL encoding used at write time.
	Kind urlcodec.Kind

	Policy Policy

	// LocalDir is the fallback directory, relative to the local store
	// root, mirroring where legacy data already lives on disk.
	LocalDir string

	// FilenamePrefix is prepended before the timestamp, when set.
	FilenamePrefix string
}

// fixedPath builds a Segments func for categories whose folder path
// does not depend on owner context.
func fixedPath(segments ...string) func(OwnerContext) ([]string, error) {
	return func(OwnerContext) ([]string, error) {
		return segments, nil
	}
}

func galleryPath(tail ...string) func(OwnerContext) ([]string, error) {
	return func(owner OwnerContext) ([]string, error) {
		title, err := owner.get(KeyGalleryTitle)
		if err != nil {
			return nil, err
		}

		return append([]string{"Galleries", title}, tail...), nil
	}
}

func workItemPath(owner OwnerContext) ([]string, error) {
	subject, err := owner.get(KeySubject)
	if err != nil {
		return nil, err
	}

	code, err := owner.get(KeySubjectCode)
	if err != nil {
		return nil, err
	}

	teacher, err := owner.get(KeyTeacher)
	if err != nil {
		return nil, err
	}

	workItem, err := owner.get(KeyWorkItem)
	if err != nil {
		return nil, err
	}

	return []string{fmt.Sprintf("%s (%s)", subject, code), teacher, workItem}, nil
}

// taxonomy is the closed descriptor table. No other component hard-codes
// category names.
var taxonomy = map[Category]Descriptor{
	StaffPhoto: {
		Segments: fixedPath("Staff Photos"),
		Kind:     urlcodec.Display,
		Policy:   FallbackToLocal,
		LocalDir: "photos/staff",
	},
	StudentPhoto: {
		Segments: fixedPath("Student Photos"),
		Kind:     urlcodec.Display,
		Policy:   FallbackToLocal,
		LocalDir: "photos/students",
	},
	ExtracurricularPhoto: {
		Segments: fixedPath("Ekstrakurikuler Photos"),
		Kind:     urlcodec.Display,
		Policy:   FallbackToLocal,
		LocalDir: "photos/extracurricular",
	},
	PostImage: {
		Segments: fixedPath("Posts"),
		Kind:     urlcodec.Display,
		Policy:   FallbackToLocal,
		LocalDir: "images/posts",
	},
	NewsImage: {
		Segments: fixedPath("News"),
		Kind:     urlcodec.Display,
		Policy:   FallbackToLocal,
		LocalDir: "images/news",
	},
	PageImage: {
		Segments: fixedPath("Pages"),
		Kind:     urlcodec.Display,
		Policy:   HardFail,
		LocalDir: "images/pages",
	},
	FacilityImage: {
		Segments: fixedPath("Facilities"),
		Kind:     urlcodec.Display,
		Policy:   FallbackToLocal,
		LocalDir: "images/facilities",
	},
	GalleryImage: {
		Segments: fixedPath("Galleries"),
		Kind:     urlcodec.Display,
		Policy:   FallbackToLocal,
		LocalDir: "images/galleries",
	},
	GalleryItem: {
		Segments:        galleryPath("items"),
		ContainerParent: []string{"Galleries"},
		Kind:            urlcodec.Display,
		Policy:          FallbackToLocal,
		LocalDir:        "images/galleries/items",
	},
	GalleryFeatured: {
		Segments:        galleryPath(),
		ContainerParent: []string{"Galleries"},
		Kind:            urlcodec.Display,
		Policy:          HardFail,
		LocalDir:        "images/galleries",
		FilenamePrefix:  "featured_",
	},
	StudentDocument: {
		Segments: fixedPath("Documents", "Students Documents"),
		Kind:     urlcodec.Download,
		Policy:   HardFail,
		LocalDir: "documents/students",
	},
	TeacherWorkFile: {
		Segments: workItemPath,
		Kind:     urlcodec.View,
		Policy:   HardFail,
		LocalDir: "documents/work-items",
	},
}

// ErrUnknownCategory is returned for a category outside the taxonomy.
var ErrUnknownCategory = errors.New("unknown asset category")

// Lookup returns the descriptor for a category.
func Lookup(cat Category) (Descriptor, error) {
	d, ok := taxonomy[cat]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}

	return d, nil
}

// Categories returns all known categories, for CLI display.
func Categories() []Category {
	out := make([]Category, 0, len(taxonomy))
	for c := range taxonomy {
		out = append(out, c)
	}

	slices.Sort(out)

	return out
}
