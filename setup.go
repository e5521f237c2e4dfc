package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sekolahweb/drivestore/internal/credential"
)

// setupTimeout bounds how long the CLI waits for the operator to finish
// the browser consent flow.
const setupTimeout = 5 * time.Minute

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Authorize access to Google Drive",
		Long:  "Runs the browser consent flow and stores the resulting refresh token as the active credential.",
		RunE:  runSetup,
	}
}

func runSetup(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	if resolvedCfg.Google.ClientID == "" || resolvedCfg.Google.ClientSecret == "" {
		return errors.New("google.client_id and google.client_secret must be configured before setup")
	}

	store, err := openStore(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// The consent redirect lands on a loopback listener; the port is
	// picked by the OS and baked into the redirect URL.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting callback listener: %w", err)
	}
	defer listener.Close()

	redirectURL := fmt.Sprintf("http://%s/callback", listener.Addr())

	oauthCfg := credential.OAuthConfig(
		resolvedCfg.Google.ClientID,
		resolvedCfg.Google.ClientSecret,
		redirectURL,
	)
	mgr := credential.NewManager(store, oauthCfg, logger)

	state, err := randomState()
	if err != nil {
		return err
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{Handler: callbackHandler(state, codeCh, errCh)}
	go func() {
		if serr := srv.Serve(listener); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
		}
	}()
	defer srv.Close()

	// Consent prompts must always be visible — not suppressed by --quiet.
	fmt.Fprintln(os.Stderr, "To authorize, visit:")
	fmt.Fprintln(os.Stderr, mgr.AuthURL(state))

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return errors.New("timed out waiting for authorization")
	}

	if err := mgr.CompleteSetup(ctx, code); err != nil {
		return err
	}

	logger.Info("setup complete")
	statusf("Setup complete. Credential stored.\n")

	return nil
}

// callbackHandler validates the OAuth state and hands the code back to
// the waiting command.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "Authorization failed. You can close this tab.", http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization refused: %s", errMsg)

			return
		}

		if q.Get("state") != state {
			http.Error(w, "State mismatch. You can close this tab.", http.StatusBadRequest)
			errCh <- errors.New("authorization state mismatch")

			return
		}

		code := q.Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code.", http.StatusBadRequest)
			errCh <- errors.New("authorization response carried no code")

			return
		}

		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
		codeCh <- code
	})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}

	return hex.EncodeToString(b), nil
}
