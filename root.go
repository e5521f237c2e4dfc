package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/sekolahweb/drivestore/internal/assets"
	"github.com/sekolahweb/drivestore/internal/config"
	"github.com/sekolahweb/drivestore/internal/credential"
	"github.com/sekolahweb/drivestore/internal/drive"
	"github.com/sekolahweb/drivestore/internal/folders"
	"github.com/sekolahweb/drivestore/internal/localstore"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by
// PersistentPreRunE. It is available to all subcommands after the root
// pre-run phase completes.
var resolvedCfg *config.Config

// newRootCmd builds and returns the fully-assembled root command with
// all subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drivestore",
		Short:   "School asset storage over Google Drive",
		Long:    "Stores school site assets (photos, documents, gallery items) on Google Drive with local fallback.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(flagConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			resolvedCfg = cfg

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newFoldersCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newRmCmd())

	return cmd
}

// buildLogger creates an slog.Logger configured by the resolved config
// and CLI flags. Config-file log level provides the baseline; --verbose
// and --quiet override it because CLI flags always win.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo
	format := "auto"

	if resolvedCfg != nil {
		switch resolvedCfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		format = resolvedCfg.Logging.LogFormat
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	// "auto" picks text on a terminal, JSON when piped to a collector.
	if format == "json" || (format == "auto" && !isatty.IsTerminal(os.Stderr.Fd())) {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// statusf prints user-facing output to stdout unless --quiet is set.
func statusf(format string, args ...any) {
	if flagQuiet {
		return
	}

	fmt.Printf(format, args...)
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// openStore opens the credential database at the configured path.
func openStore(logger *slog.Logger) (*credential.Store, error) {
	return credential.NewStore(resolvedCfg.Storage.DatabasePath, logger)
}

// newManager builds the credential manager over an open store.
func newManager(store *credential.Store, logger *slog.Logger) *credential.Manager {
	oauthCfg := credential.OAuthConfig(
		resolvedCfg.Google.ClientID,
		resolvedCfg.Google.ClientSecret,
		"", // setup overrides the redirect per flow
	)

	return credential.NewManager(store, oauthCfg, logger)
}

// stack holds the fully wired storage pipeline for commands that talk
// to Drive.
type stack struct {
	store *credential.Store
	orch  *assets.Orchestrator
	res   *folders.Resolver
}

// buildStack wires credential manager, Drive client, folder resolver,
// local fallback store, and orchestrator from the resolved config.
func buildStack(ctx context.Context, logger *slog.Logger) (*stack, error) {
	store, err := openStore(logger)
	if err != nil {
		return nil, err
	}

	mgr := newManager(store, logger)

	httpClient := mgr.Client()
	httpClient.Timeout = resolvedCfg.HTTPTimeout()

	client, err := drive.New(ctx, logger, option.WithHTTPClient(httpClient))
	if err != nil {
		store.Close()
		return nil, err
	}

	res := folders.NewResolver(client, resolvedCfg.Google.RootFolderID, logger)
	local := localstore.NewStore(resolvedCfg.Storage.LocalDir, resolvedCfg.Storage.LocalBaseURL, logger)

	return &stack{
		store: store,
		orch:  assets.NewOrchestrator(res, client, local, logger),
		res:   res,
	}, nil
}

func (s *stack) Close() {
	s.store.Close()
}
