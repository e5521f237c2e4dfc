package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sekolahweb/drivestore/internal/credential"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a fresh access token from the stored refresh token",
		Long:  "Mints a new access token regardless of the recorded expiry. Useful to verify the stored credential still works.",
		RunE:  runRefresh,
	}
}

func runRefresh(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	store, err := openStore(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	mgr := newManager(store, logger)
	mgr.Invalidate()

	ctx := context.Background()

	if _, err := mgr.Token(ctx); err != nil {
		if errors.Is(err, credential.ErrSetupRequired) {
			return fmt.Errorf("no usable credential — run 'drivestore setup' first")
		}

		return err
	}

	rec, err := store.Active(ctx, credential.ServiceGoogleDrive)
	if err != nil {
		return err
	}

	statusf("Access token refreshed, expires %s\n", rec.ExpiresAt.Format("2006-01-02 15:04:05"))

	return nil
}
