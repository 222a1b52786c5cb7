// Package timetracker drives the legacy time-tracking web application
// through its HTML forms: login, entry submission and entry listing.
//
// The application has no API. Every state-changing request must echo the
// hidden fields (__VIEWSTATE, __EVENTVALIDATION, ...) of the previous
// response, and the submission form reveals the assignment and focal point
// options only after a project has been posted.
package timetracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Endpoints, relative to the base URL.
const (
	EndpointLogin  = "default.aspx"
	EndpointSubmit = "CargaTimeTracker.aspx"
	EndpointList   = "ListaTimeTracker.aspx"
)

// Form field names of the ASP.NET pages.
const (
	fieldUsername    = "ctl00$ContentPlaceHolder$UserNameTextBox"
	fieldPassword    = "ctl00$ContentPlaceHolder$PasswordTextBox"
	fieldLoginButton = "ctl00$ContentPlaceHolder$LoginButton"

	fieldProject       = "ctl00$ContentPlaceHolder$idProyectoDropDownList"
	fieldDate          = "ctl00$ContentPlaceHolder$txtFrom"
	fieldHours         = "ctl00$ContentPlaceHolder$TiempoTextBox"
	fieldAssignment    = "ctl00$ContentPlaceHolder$idTipoAsignacionDropDownList"
	fieldDescription   = "ctl00$ContentPlaceHolder$DescripcionTextBox"
	fieldFocalPoint    = "ctl00$ContentPlaceHolder$idFocalPointClientDropDownList"
	fieldScriptManager = "ctl00$ContentPlaceHolder$ScriptManager"
	fieldUpdatePanel   = "ctl00$ContentPlaceHolder$UpdatePanel1"
	fieldAcceptButton  = "ctl00$ContentPlaceHolder$btnAceptar"
	fieldAsyncPost     = "__ASYNCPOST"

	fieldListFrom = "ctl00$ContentPlaceHolder$txtFrom"
	fieldListTo   = "ctl00$ContentPlaceHolder$txtTo"

	buttonLogin  = "Login"
	buttonAccept = "Accept"
)

// Names used in SelectionUnavailableError.Field.
const (
	FieldProject    = "project"
	FieldAssignment = "assignment"
	FieldFocalPoint = "focal point"
)

// State is the authentication state of a Client.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Options configures a Client.
type Options struct {
	// BaseURL is the application root, e.g. https://timetracker.example.com/.
	BaseURL  string
	User     string
	Password string
	// Timeout bounds each request. Zero means DefaultTimeout. Ignored when
	// HTTPClient is set.
	Timeout time.Duration
	// HTTPClient is used instead of a default client. A cookie jar is
	// installed on it if it has none.
	HTTPClient *http.Client
}

// Client is one authenticated session with the application.
//
// A Client is not safe for concurrent use. Each response replaces the
// hidden fields the next request sends, so calls must not overlap; use one
// Client per set of credentials.
type Client struct {
	s        *session
	user     string
	password string
	state    State
}

// NewClient returns an anonymous Client. Call Login, or use Dial.
func NewClient(opts Options) (*Client, error) {
	s, err := newSession(opts.BaseURL, opts.HTTPClient, opts.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{s: s, user: opts.User, password: opts.Password}, nil
}

// Dial creates a Client and logs in.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	c, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// State returns the current authentication state.
func (c *Client) State() State { return c.state }

// Secrets returns a copy of the hidden fields the next POST will carry.
func (c *Client) Secrets() Secrets {
	out := make(Secrets, len(c.s.secrets))
	for k, v := range c.s.secrets {
		out[k] = v
	}
	return out
}

// Login authenticates the session. It does nothing once authenticated.
func (c *Client) Login(ctx context.Context) error {
	if c.state == Authenticated {
		return nil
	}
	c.state = Authenticating
	if err := c.login(ctx); err != nil {
		c.state = Anonymous
		return err
	}
	c.state = Authenticated
	return nil
}

func (c *Client) login(ctx context.Context) error {
	// Primes the cookies and the hidden fields of the login form.
	if _, err := c.s.get(ctx, EndpointLogin); err != nil {
		return err
	}

	resp, err := c.s.post(ctx, EndpointLogin, url.Values{
		fieldUsername:    {c.user},
		fieldPassword:    {c.password},
		fieldLoginButton: {buttonLogin},
	})
	if err != nil {
		return err
	}

	// Rejected credentials re-render the login page with 200.
	if resp.StatusCode != http.StatusOK || resp.landedOn(EndpointLogin) {
		return &AuthenticationError{StatusCode: resp.StatusCode, URL: resp.URL.String()}
	}
	return nil
}

// SubmitEntry creates an entry through the three-step submission form:
// the project is posted first so the server reveals the assignments and
// focal points available for it, then the complete form is submitted.
//
// Labels are matched exactly against the options the server offers; a
// missing one fails with *SelectionUnavailableError before anything is
// submitted.
func (c *Client) SubmitEntry(ctx context.Context, req EntryRequest) error {
	if err := c.Login(ctx); err != nil {
		return err
	}

	resp, err := c.s.get(ctx, EndpointSubmit)
	if err != nil {
		return err
	}
	projectID, err := resolve(resp.Body, fieldProject, FieldProject, req.Project)
	if err != nil {
		return err
	}

	form := url.Values{
		fieldDate:        {req.Day.Format(DateFormat)},
		fieldProject:     {projectID},
		fieldHours:       {""},
		fieldAssignment:  {""},
		fieldDescription: {""},
		fieldFocalPoint:  {""},
	}

	// Partial postback of the update panel: validates the project without
	// submitting and returns the dependent dropdowns.
	partial := cloneValues(form)
	partial.Set(fieldScriptManager, fieldUpdatePanel+"|"+fieldProject)
	partial.Set(fieldAsyncPost, "true")

	resp, err = c.s.post(ctx, EndpointSubmit, partial)
	if err != nil {
		return err
	}
	assignmentID, err := resolve(resp.Body, fieldAssignment, FieldAssignment, req.Assignment)
	if err != nil {
		return err
	}
	focalPointID, err := resolve(resp.Body, fieldFocalPoint, FieldFocalPoint, req.FocalPoint)
	if err != nil {
		return err
	}

	form.Set(fieldAssignment, assignmentID)
	form.Set(fieldFocalPoint, focalPointID)
	form.Set(fieldHours, formatHours(req.Hours))
	form.Set(fieldDescription, req.Description)
	form.Set(fieldAcceptButton, buttonAccept)

	resp, err = c.s.post(ctx, EndpointSubmit, form)
	if err != nil {
		return err
	}

	// Accepted entries redirect to the listing page.
	if resp.StatusCode != http.StatusOK || !resp.landedOn(EndpointList) {
		return &SubmissionFailedError{StatusCode: resp.StatusCode, URL: resp.URL.String()}
	}
	return nil
}

// ListEntries returns the entries between start and end, inclusive.
func (c *Client) ListEntries(ctx context.Context, start, end time.Time) ([]TimeEntry, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	if _, err := c.s.get(ctx, EndpointList); err != nil {
		return nil, err
	}
	resp, err := c.s.post(ctx, EndpointList, url.Values{
		fieldListFrom: {start.Format(DateFormat)},
		fieldListTo:   {end.Format(DateFormat)},
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing entries: unexpected status %d", resp.StatusCode)
	}

	return parseEntries(ExtractTableRows(resp.Body))
}

func resolve(markup, selectName, field, label string) (string, error) {
	id, ok := ExtractSelectOptions(markup, selectName)[label]
	if !ok {
		return "", &SelectionUnavailableError{Field: field, Label: label}
	}
	return id, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
