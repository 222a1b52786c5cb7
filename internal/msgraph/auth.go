package msgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// DefaultTokenPath returns the path to the stored token file.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".att", "auth", "msgraph_tokens.json"), nil
}

// oauth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func oauth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken loads a previously saved token. A missing file is not an error.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken atomically persists a token.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// AuthOptions configures Authenticate.
type AuthOptions struct {
	TenantID  string
	ClientID  string
	TokenPath string
	// Prompt receives the device code sign-in instructions.
	Prompt io.Writer
	Log    zerolog.Logger
}

// Authenticate returns a token source for Microsoft Graph. It loads the
// saved token, refreshes it if needed, or runs the device code flow when
// no usable token is available. Refreshed tokens are written back to
// TokenPath.
func Authenticate(ctx context.Context, opts AuthOptions) (oauth2.TokenSource, error) {
	cfg := oauth2Config(opts.TenantID, opts.ClientID)

	tok, err := loadToken(opts.TokenPath)
	if err != nil {
		// Corrupt token: warn and re-auth.
		opts.Log.Warn().Err(err).Msg("ignoring stored graph token")
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return saving(cfg.TokenSource(ctx, tok), opts), nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := saveToken(opts.TokenPath, refreshed); err != nil {
				opts.Log.Warn().Err(err).Msg("could not save refreshed token")
			}
			return saving(cfg.TokenSource(ctx, refreshed), opts), nil
		}
		opts.Log.Info().Err(err).Msg("token refresh failed, re-authenticating")
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	prompt := opts.Prompt
	if prompt == nil {
		prompt = os.Stderr
	}
	fmt.Fprintln(prompt)
	fmt.Fprintln(prompt, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(prompt)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := saveToken(opts.TokenPath, newTok); err != nil {
		opts.Log.Warn().Err(err).Msg("could not save token")
	}
	return saving(cfg.TokenSource(ctx, newTok), opts), nil
}

func saving(ts oauth2.TokenSource, opts AuthOptions) oauth2.TokenSource {
	return &savingTokenSource{ts: ts, path: opts.TokenPath, log: opts.Log}
}

// savingTokenSource wraps a TokenSource and persists tokens it hands out
// whenever the access token changed.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
	log  zerolog.Logger
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			s.log.Warn().Err(err).Msg("could not save token")
		}
	}
	return tok, nil
}
