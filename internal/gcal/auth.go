// Package gcal pushes the schedule to Google Calendar as all-day
// events. Events are tagged with the task id in a private extended
// property, which is what lets sync find, patch and garbage-collect
// them on later runs.
package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// callbackPort is where the local consent-flow server listens. The
// OAuth client in credentials.json must allow this redirect.
const callbackPort = "8847"

const authTimeout = 5 * time.Minute

// ErrNoToken is returned by NewService when no cached token exists;
// callers direct the user to `taskplan calendar auth`.
var ErrNoToken = errors.New("no calendar token (run 'taskplan calendar auth' first)")

// oauthConfig builds the oauth2 config from the downloaded client
// credentials file.
func oauthConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath) //nolint:gosec // credentials path from plan config
	if err != nil {
		return nil, fmt.Errorf("reading calendar credentials %s: %w", credentialsPath, err)
	}
	cfg, err := google.ConfigFromJSON(data, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar credentials: %w", err)
	}
	cfg.RedirectURL = "http://localhost:" + callbackPort + "/callback"
	return cfg, nil
}

// Authorize runs the local-callback consent flow and caches the token
// at tokenPath. The authorization URL is written to w for the user to
// open; the flow completes when Google redirects the browser back to
// the local listener.
func Authorize(ctx context.Context, w io.Writer, credentialsPath, tokenPath string) error {
	cfg, err := oauthConfig(credentialsPath)
	if err != nil {
		return err
	}

	code, err := codeFromCallback(ctx, w, cfg)
	if err != nil {
		return err
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	return saveToken(tokenPath, tok)
}

// codeFromCallback serves one OAuth redirect on localhost and returns
// the authorization code it carries.
func codeFromCallback(ctx context.Context, w io.Writer, cfg *oauth2.Config) (string, error) {
	listener, err := net.Listen("tcp", "localhost:"+callbackPort)
	if err != nil {
		return "", fmt.Errorf("starting callback listener: %w", err)
	}
	defer listener.Close()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(rw, "authorization code missing from redirect", http.StatusBadRequest)
				errCh <- errors.New("authorization code missing from redirect")
				return
			}
			fmt.Fprintln(rw, "Authorized. You can close this window.")
			codeCh <- code
		}),
	}
	go server.Serve(listener) //nolint:errcheck // shut down below
	defer server.Shutdown(context.Background()) //nolint:errcheck // best-effort shutdown

	authURL := cfg.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(w, "Open this URL in your browser to authorize taskplan:\n\n  %s\n\nWaiting for authorization...\n", authURL)

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(authTimeout):
		return "", errors.New("authorization timed out")
	}
}

// NewService builds an authenticated Calendar service from the cached
// token.
func NewService(ctx context.Context, credentialsPath, tokenPath string) (*calendar.Service, error) {
	cfg, err := oauthConfig(credentialsPath)
	if err != nil {
		return nil, err
	}
	tok, err := loadToken(tokenPath)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return srv, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path) //nolint:gosec // token path from plan config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("reading calendar token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parsing calendar token %s: %w", path, err)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshaling calendar token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing calendar token: %w", err)
	}
	return nil
}
