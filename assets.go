package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sekolahweb/drivestore/internal/assets"
)

// Owner-context flags for put.
var (
	flagGallery     string
	flagSubject     string
	flagSubjectCode string
	flagTeacher     string
	flagWorkItem    string
	flagReplaceURL  string
)

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put CATEGORY FILE",
		Short: "Store a file as an asset of the given category",
		Long: "Uploads a file to the category's Drive folder and prints the URL to persist.\n" +
			"Known categories: " + categoryList() + ".",
		Args: cobra.ExactArgs(2),
		RunE: runPut,
	}

	cmd.Flags().StringVar(&flagGallery, "gallery", "", "gallery title (gallery-item, gallery-featured)")
	cmd.Flags().StringVar(&flagSubject, "subject", "", "subject name (teacher-work-file)")
	cmd.Flags().StringVar(&flagSubjectCode, "subject-code", "", "subject code (teacher-work-file)")
	cmd.Flags().StringVar(&flagTeacher, "teacher", "", "teacher name (teacher-work-file)")
	cmd.Flags().StringVar(&flagWorkItem, "work-item", "", "work item name (teacher-work-file)")
	cmd.Flags().StringVar(&flagReplaceURL, "replace", "", "URL of the old asset to replace")

	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm CATEGORY URL",
		Short: "Delete the asset behind a stored URL",
		Args:  cobra.ExactArgs(2),
		RunE:  runRm,
	}
}

func categoryList() string {
	cats := assets.Categories()

	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}

	return strings.Join(names, ", ")
}

// ownerContextFromFlags collects whichever owner-context flags were
// set; the taxonomy reports any key its path template still misses.
func ownerContextFromFlags() assets.OwnerContext {
	owner := assets.OwnerContext{}

	for key, val := range map[string]string{
		assets.KeyGalleryTitle: flagGallery,
		assets.KeySubject:      flagSubject,
		assets.KeySubjectCode:  flagSubjectCode,
		assets.KeyTeacher:      flagTeacher,
		assets.KeyWorkItem:     flagWorkItem,
	} {
		if val != "" {
			owner[key] = val
		}
	}

	return owner
}

func runPut(_ *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := context.Background()

	cat := assets.Category(args[0])
	path := args[1]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	name := filepath.Base(path)

	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = http.DetectContentType(content)
	}

	s, err := buildStack(ctx, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	file := assets.File{Name: name, MIME: mimeType, Content: content}
	owner := ownerContextFromFlags()

	var url string
	if flagReplaceURL != "" {
		url, err = s.orch.Replace(ctx, cat, owner, file, flagReplaceURL)
	} else {
		url, err = s.orch.Store(ctx, cat, owner, file)
	}

	if err != nil {
		return err
	}

	statusf("%s\n", url)

	return nil
}

func runRm(_ *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := context.Background()

	s, err := buildStack(ctx, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.orch.Delete(ctx, assets.Category(args[0]), args[1])
	if err != nil {
		return err
	}

	if removed {
		statusf("Deleted.\n")
	} else {
		statusf("Nothing to delete.\n")
	}

	return nil
}
