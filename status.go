package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sekolahweb/drivestore/internal/credential"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show credential and configuration status",
		RunE:  runStatus,
	}
}

// statusOutput is the JSON schema for `status --json`.
type statusOutput struct {
	Configured    bool   `json:"configured"`
	SetupRequired bool   `json:"setup_required"`
	TokenExpiry   string `json:"token_expiry,omitempty"`
	DatabasePath  string `json:"database_path"`
	LocalDir      string `json:"local_dir"`
	RootFolderID  string `json:"root_folder_id,omitempty"`
}

func runStatus(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	out := statusOutput{
		Configured:   resolvedCfg.Google.ClientID != "" && resolvedCfg.Google.ClientSecret != "",
		DatabasePath: resolvedCfg.Storage.DatabasePath,
		LocalDir:     resolvedCfg.Storage.LocalDir,
		RootFolderID: resolvedCfg.Google.RootFolderID,
	}

	store, err := openStore(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Active(context.Background(), credential.ServiceGoogleDrive)
	switch {
	case errors.Is(err, credential.ErrNoCredential):
		out.SetupRequired = true
	case err != nil:
		return err
	default:
		if !rec.ExpiresAt.IsZero() {
			out.TokenExpiry = rec.ExpiresAt.Format(time.RFC3339)
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	if !out.Configured {
		statusf("OAuth client: not configured (set google.client_id and google.client_secret)\n")
	} else {
		statusf("OAuth client: configured\n")
	}

	if out.SetupRequired {
		statusf("Credential: setup required — run 'drivestore setup'\n")
	} else if out.TokenExpiry != "" {
		statusf("Credential: active, access token expires %s\n", out.TokenExpiry)
	} else {
		statusf("Credential: active, no access token minted yet\n")
	}

	statusf("Database: %s\n", out.DatabasePath)
	statusf("Local fallback: %s\n", out.LocalDir)

	return nil
}
