package timetracker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"time"
)

// UserAgent is sent on every request. The application only serves the
// partial-update fragments the submission form relies on to browsers it
// recognises.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_6) AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/78.0.3891.0 Safari/537.36 Edg/78.0.266.0"

// DefaultTimeout bounds a single request when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// response is a fully read HTTP response.
type response struct {
	StatusCode int
	// URL is where the request ended up after redirects.
	URL  *url.URL
	Body string
}

// landedOn reports whether the final URL points at endpoint.
func (r *response) landedOn(endpoint string) bool {
	return strings.EqualFold(path.Base(r.URL.Path), endpoint)
}

// session is a cookie-carrying connection to the application that echoes
// the hidden fields of the last response on every POST.
type session struct {
	http    *http.Client
	baseURL *url.URL
	secrets Secrets
}

func newSession(baseURL string, hc *http.Client, timeout time.Duration) (*session, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	if hc == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	return &session{http: hc, baseURL: u, secrets: Secrets{}}, nil
}

func (s *session) get(ctx context.Context, endpoint string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpointURL(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return s.do(req)
}

// post sends form merged over the current secrets; form wins on conflicts.
func (s *session) post(ctx context.Context, endpoint string, form url.Values) (*response, error) {
	data := url.Values{}
	for k, v := range s.secrets {
		data.Set(k, v)
	}
	for k, v := range form {
		data[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpointURL(endpoint), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *session) do(req *http.Request) (*response, error) {
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// Replaced wholesale, regardless of status: a field missing from this
	// response is not sent again.
	s.secrets = ExtractHiddenFields(string(body))

	return &response{
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL,
		Body:       string(body),
	}, nil
}

func (s *session) endpointURL(endpoint string) string {
	return s.baseURL.ResolveReference(&url.URL{Path: endpoint}).String()
}
