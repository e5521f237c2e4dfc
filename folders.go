package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sekolahweb/drivestore/internal/assets"
	"github.com/sekolahweb/drivestore/internal/urlcodec"
)

func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Inspect and manage remote folders",
	}

	cmd.AddCommand(newFoldersResolveCmd())
	cmd.AddCommand(newFoldersListCmd())
	cmd.AddCommand(newFoldersRenameCmd())
	cmd.AddCommand(newFoldersRmCmd())

	return cmd
}

func newFoldersResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve SEGMENT...",
		Short: "Resolve a folder path to its Drive ID, creating missing segments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := buildLogger()
			ctx := context.Background()

			s, err := buildStack(ctx, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.res.Resolve(ctx, args...)
			if err != nil {
				return err
			}

			statusf("%s\n", id)

			return nil
		},
	}
}

func newFoldersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list CATEGORY",
		Short: "List container folders for a category (e.g. gallery-item)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := buildLogger()
			ctx := context.Background()

			s, err := buildStack(ctx, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.orch.ListContainers(ctx, assets.Category(args[0]))
			if err != nil {
				return err
			}

			if flagJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")

				return enc.Encode(out)
			}

			for _, f := range out {
				statusf("%s\t%s\t%s\n", f.ID, f.Name, urlcodec.FolderURL(f.ID))
			}

			return nil
		},
	}
}

func newFoldersRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename CATEGORY OLD NEW",
		Short: "Rename a category's container folder",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := buildLogger()
			ctx := context.Background()

			s, err := buildStack(ctx, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.orch.RenameContainer(ctx, assets.Category(args[0]), args[1], args[2]); err != nil {
				return err
			}

			statusf("Renamed %q to %q\n", args[1], args[2])

			return nil
		},
	}
}

func newFoldersRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm CATEGORY NAME",
		Short: "Delete a category's container folder and its contents",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := buildLogger()
			ctx := context.Background()

			s, err := buildStack(ctx, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.orch.DeleteContainer(ctx, assets.Category(args[0]), args[1]); err != nil {
				return err
			}

			statusf("Deleted container %q\n", args[1])

			return nil
		},
	}
}
