package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
)

// tokenExpirySkew is how long before the recorded expiry an access
// token is treated as already expired. Covers clock drift and the
// latency of the request that will carry the token.
const tokenExpirySkew = 5 * time.Minute

// driveScope grants full Drive access, required to create folders and
// manage permissions on uploaded files.
const driveScope = "https://www.googleapis.com/auth/drive"

// ErrSetupRequired is returned when no usable credential exists: either
// none was ever stored, or the provider revoked the refresh token and
// the record was deactivated. Recovery requires a human re-running
// setup; callers must not retry.
var ErrSetupRequired = errors.New("credential setup required")

// OAuthConfig builds the oauth2 configuration for Google Drive.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{driveScope},
		Endpoint:     google.Endpoint,
	}
}

// Manager mints access tokens from the stored refresh token on demand.
// Concurrent callers needing a refresh are coalesced into a single
// token-endpoint request. A revoked refresh token deactivates the
// stored record so every subsequent call fails fast with
// ErrSetupRequired.
type Manager struct {
	store  *Store
	oauth  *oauth2.Config
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group

	mu           sync.Mutex
	forceRefresh bool
}

// NewManager creates a Manager. The oauth2 config is passed pre-built
// so tests can point it at a mock token endpoint.
func NewManager(store *Store, oauthCfg *oauth2.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		store:  store,
		oauth:  oauthCfg,
		logger: logger,
		now:    time.Now,
	}
}

// Token returns a valid access token, minting a fresh one from the
// stored refresh token if the cached one is expired or near expiry.
func (m *Manager) Token(ctx context.Context) (string, error) {
	rec, err := m.store.Active(ctx, ServiceGoogleDrive)
	if errors.Is(err, ErrNoCredential) {
		return "", fmt.Errorf("no stored credential: %w", ErrSetupRequired)
	}
	if err != nil {
		return "", err
	}

	if rec.RefreshToken == "" {
		return "", fmt.Errorf("stored credential has no refresh token: %w", ErrSetupRequired)
	}

	m.mu.Lock()
	force := m.forceRefresh
	m.forceRefresh = false
	m.mu.Unlock()

	if !force && rec.AccessToken != "" && m.now().Add(tokenExpirySkew).Before(rec.ExpiresAt) {
		return rec.AccessToken, nil
	}

	// Coalesce concurrent refreshes into one token-endpoint request.
	v, err, _ := m.group.Do(ServiceGoogleDrive, func() (any, error) {
		return m.refresh(ctx, rec)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// Invalidate forces the next Token call to mint a fresh access token
// regardless of the recorded expiry. Used after the provider rejects a
// token that looked valid locally.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.forceRefresh = true
	m.mu.Unlock()
}

// refresh mints a new access token from the record's refresh token and
// persists it. A revoked refresh token deactivates the record.
func (m *Manager) refresh(ctx context.Context, rec *Record) (string, error) {
	m.logger.Debug("refreshing access token", slog.Int64("credential_id", rec.ID))

	src := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: rec.RefreshToken})

	tok, err := src.Token()
	if err != nil {
		if isRevoked(err) {
			m.logger.Error("refresh token revoked, deactivating credential",
				slog.Int64("credential_id", rec.ID))

			if derr := m.store.Deactivate(ctx, rec.ID); derr != nil {
				m.logger.Error("deactivating revoked credential", slog.Any("error", derr))
			}

			return "", fmt.Errorf("refresh token revoked: %w", ErrSetupRequired)
		}

		return "", fmt.Errorf("refreshing access token: %w", err)
	}

	if err := m.store.UpdateAccessToken(ctx, rec.ID, tok.AccessToken, tok.Expiry); err != nil {
		// The token is still usable this round even if persisting failed.
		m.logger.Error("persisting refreshed token", slog.Any("error", err))
	}

	m.logger.Info("access token refreshed",
		slog.Int64("credential_id", rec.ID),
		slog.Time("expires_at", tok.Expiry),
	)

	return tok.AccessToken, nil
}

// isRevoked reports whether a token-endpoint error means the refresh
// token is permanently dead, as opposed to a transient failure.
func isRevoked(err error) bool {
	var rerr *oauth2.RetrieveError

	if !errors.As(err, &rerr) {
		return false
	}

	return rerr.ErrorCode == "invalid_grant"
}

// AuthURL returns the browser URL that starts the consent flow.
// AccessTypeOffline is required to receive a refresh token;
// ApprovalForce makes Google reissue one even if consent was already
// granted before.
func (m *Manager) AuthURL(state string) string {
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// CompleteSetup exchanges an authorization code for tokens and stores
// them as the new active credential.
func (m *Manager) CompleteSetup(ctx context.Context, code string) error {
	tok, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	if tok.RefreshToken == "" {
		return errors.New("authorization response carried no refresh token")
	}

	_, err = m.store.Save(ctx, &Record{
		Service:      ServiceGoogleDrive,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	})

	return err
}

// Client returns an HTTP client that authenticates every request with
// a managed access token. If the provider rejects a token that looked
// valid locally, the transport forces one refresh and retries the
// request once.
func (m *Manager) Client() *http.Client {
	return &http.Client{
		Transport: &authTransport{manager: m, base: http.DefaultTransport},
	}
}

// authTransport injects bearer tokens and performs the single bounded
// recovery on an unexpected 401.
type authTransport struct {
	manager *Manager
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.manager.Token(req.Context())
	if err != nil {
		return nil, err
	}

	resp, err := t.send(req, tok)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// A request body consumed by the first attempt cannot be replayed.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	// The token passed the local expiry check but the provider refused
	// it. Force one refresh and retry; a second 401 propagates.
	resp.Body.Close()
	t.manager.Invalidate()

	tok, err = t.manager.Token(req.Context())
	if err != nil {
		return nil, err
	}

	return t.send(req, tok)
}

func (t *authTransport) send(req *http.Request, token string) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replaying request body: %w", err)
		}

		r.Body = body
	}

	return t.base.RoundTrip(r)
}
