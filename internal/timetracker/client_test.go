package timetracker_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

func dial(t *testing.T, app *fakeApp) *timetracker.Client {
	t.Helper()
	c, err := timetracker.Dial(context.Background(), app.options())
	require.NoError(t, err)
	return c
}

func validRequest() timetracker.EntryRequest {
	return timetracker.EntryRequest{
		Day:         time.Date(2026, 2, 27, 0, 0, 0, 0, time.Local),
		Hours:       8,
		Description: "-[ENG-1]: Fix the importer",
		Project:     "AdRoll - AdRoll",
		Assignment:  "Software Development",
		FocalPoint:  "Robbie Holmes",
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "timetracker.example.com", "://bad"} {
		_, err := timetracker.NewClient(timetracker.Options{BaseURL: u})
		assert.Error(t, err, "base URL %q", u)
	}
}

func TestLogin_EchoesHiddenFields(t *testing.T) {
	app := newFakeApp(t)
	c := dial(t, app)

	assert.Equal(t, timetracker.Authenticated, c.State())
	posts := app.posts("default.aspx")
	require.Len(t, posts, 1)
	assert.Equal(t, "abc", posts[0].Get("__VIEWSTATE"))
	assert.Equal(t, "ev-login", posts[0].Get("__EVENTVALIDATION"))
	assert.Equal(t, "jdoe", posts[0].Get(keyUser))
	assert.Equal(t, "Login", posts[0].Get(keyLoginButton))
}

func TestLogin_Idempotent(t *testing.T) {
	app := newFakeApp(t)
	c := dial(t, app)
	before := app.count("total")

	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, before, app.count("total"), "second login must not hit the network")
}

func TestLogin_RejectedCredentials(t *testing.T) {
	app := newFakeApp(t)
	opts := app.options()
	opts.Password = "wrong"

	c, err := timetracker.NewClient(opts)
	require.NoError(t, err)

	err = c.Login(context.Background())
	var authErr *timetracker.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 200, authErr.StatusCode)
	assert.Equal(t, timetracker.Anonymous, c.State())

	// A failed login can be retried; it runs the whole sequence again.
	before := app.count("default.aspx")
	assert.Error(t, c.Login(context.Background()))
	assert.Equal(t, before+2, app.count("default.aspx"))
}

func TestLogin_TransportError(t *testing.T) {
	app := newFakeApp(t)
	opts := app.options()
	app.srv.Close()

	_, err := timetracker.Dial(context.Background(), opts)
	require.Error(t, err)
	var authErr *timetracker.AuthenticationError
	assert.False(t, errors.As(err, &authErr), "transport failures are not authentication errors")
}

func TestSecrets_ReplacedWholesale(t *testing.T) {
	app := newFakeApp(t)
	c := dial(t, app)

	// The home page only carries __VIEWSTATE; the login page's
	// __EVENTVALIDATION must not survive.
	assert.Equal(t, timetracker.Secrets{"__VIEWSTATE": "home"}, c.Secrets())
}

func TestSecrets_ReplacedOnErrorStatus(t *testing.T) {
	var n int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, page(hidden("__VIEWSTATE", fmt.Sprintf("err-%d", n))))
	}))
	defer srv.Close()

	c, err := timetracker.NewClient(timetracker.Options{BaseURL: srv.URL, User: "jdoe", Password: "s3cret"})
	require.NoError(t, err)

	err = c.Login(context.Background())
	var authErr *timetracker.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusInternalServerError, authErr.StatusCode)
	assert.Equal(t, timetracker.Secrets{"__VIEWSTATE": "err-2"}, c.Secrets())
}

func TestNewClient_AppliesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := timetracker.NewClient(timetracker.Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	err = c.Login(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
	assert.True(t, urlErr.Timeout())
}

func TestSubmitEntry_Success(t *testing.T) {
	app := newFakeApp(t)
	c := dial(t, app)

	require.NoError(t, c.SubmitEntry(context.Background(), validRequest()))

	posts := app.posts("CargaTimeTracker.aspx")
	require.Len(t, posts, 2)

	partial := posts[0]
	assert.Equal(t, "submit-1", partial.Get("__VIEWSTATE"))
	assert.Equal(t, "true", partial.Get("__ASYNCPOST"))
	assert.Equal(t, "ctl00$ContentPlaceHolder$UpdatePanel1|"+keyProject, partial.Get(keyScript))
	assert.Equal(t, "27/02/2026", partial.Get(keyDate))
	assert.Equal(t, "12", partial.Get(keyProject))
	assert.Empty(t, partial.Get(keyHours))
	assert.Empty(t, partial.Get(keyAssignment))
	assert.Empty(t, partial.Get(keyFocalPoint))
	assert.Empty(t, partial.Get(keyDescription))
	assert.Empty(t, partial.Get(keyAccept))

	final := posts[1]
	assert.Equal(t, "submit-2", final.Get("__VIEWSTATE"))
	assert.Empty(t, final.Get("__ASYNCPOST"))
	assert.Empty(t, final.Get(keyScript))
	assert.Equal(t, "27/02/2026", final.Get(keyDate))
	assert.Equal(t, "12", final.Get(keyProject))
	assert.Equal(t, "7", final.Get(keyAssignment))
	assert.Equal(t, "3", final.Get(keyFocalPoint))
	assert.Equal(t, "8", final.Get(keyHours))
	assert.Equal(t, "-[ENG-1]: Fix the importer", final.Get(keyDescription))
	assert.Equal(t, "Accept", final.Get(keyAccept))
}

func TestSubmitEntry_FractionalHours(t *testing.T) {
	app := newFakeApp(t)
	c := dial(t, app)

	req := validRequest()
	req.Hours = 7.5
	require.NoError(t, c.SubmitEntry(context.Background(), req))

	posts := app.posts("CargaTimeTracker.aspx")
	require.Len(t, posts, 2)
	assert.Equal(t, "7.5", posts[1].Get(keyHours))
}

func TestSubmitEntry_UnavailableSelections(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*timetracker.EntryRequest)
		field       string
		label       string
		submitCalls int
	}{
		{
			name:        "project fails before any post",
			mutate:      func(r *timetracker.EntryRequest) { r.Project = "AdRoll" },
			field:       timetracker.FieldProject,
			label:       "AdRoll",
			submitCalls: 1,
		},
		{
			name:        "assignment fails after the partial post",
			mutate:      func(r *timetracker.EntryRequest) { r.Assignment = "Gardening" },
			field:       timetracker.FieldAssignment,
			label:       "Gardening",
			submitCalls: 2,
		},
		{
			name:        "focal point fails after the partial post",
			mutate:      func(r *timetracker.EntryRequest) { r.FocalPoint = "Nobody" },
			field:       timetracker.FieldFocalPoint,
			label:       "Nobody",
			submitCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newFakeApp(t)
			c := dial(t, app)

			req := validRequest()
			tt.mutate(&req)
			err := c.SubmitEntry(context.Background(), req)

			var selErr *timetracker.SelectionUnavailableError
			require.ErrorAs(t, err, &selErr)
			assert.Equal(t, tt.field, selErr.Field)
			assert.Equal(t, tt.label, selErr.Label)
			assert.Contains(t, err.Error(), tt.label)
			assert.Equal(t, tt.submitCalls, app.count("CargaTimeTracker.aspx"))
		})
	}
}

func TestSubmitEntry_Rejected(t *testing.T) {
	app := newFakeApp(t)
	app.accept = false
	c := dial(t, app)

	err := c.SubmitEntry(context.Background(), validRequest())
	var subErr *timetracker.SubmissionFailedError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, 200, subErr.StatusCode)
	assert.Contains(t, subErr.URL, "CargaTimeTracker.aspx")
	assert.Equal(t, timetracker.Secrets{"__VIEWSTATE": "submit-3"}, c.Secrets())
}

func TestSubmitEntry_LogsInFirst(t *testing.T) {
	app := newFakeApp(t)
	c, err := timetracker.NewClient(app.options())
	require.NoError(t, err)

	require.NoError(t, c.SubmitEntry(context.Background(), validRequest()))
	assert.Equal(t, timetracker.Authenticated, c.State())
	assert.Equal(t, 2, app.count("default.aspx"))
}

func TestListEntries(t *testing.T) {
	app := newFakeApp(t)
	app.listTable = table(
		headerRow,
		row("25/02/2026", "8", "AdRoll - AdRoll", "Software Development", "-[ENG-1]: Importer", "<a href=\"#\">Edit</a>"),
		row("26/02/2026", "7.5", "AdRoll - AdRoll", "Meetings", "Planning &amp; review", ""),
		row("27/02/2026", "0,5", "Internal", "Software Development", "<span>Onboarding</span>", ""),
		row("5/2/2026", "8", "AdRoll - AdRoll", "Software Development", "Unpadded date", ""),
		row("", "24.5", "", "", "", ""),
	)
	c := dial(t, app)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 2, 27, 0, 0, 0, 0, time.Local)
	entries, err := c.ListEntries(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	posts := app.posts("ListaTimeTracker.aspx")
	require.Len(t, posts, 1)
	assert.Equal(t, "01/02/2026", posts[0].Get(keyDate))
	assert.Equal(t, "27/02/2026", posts[0].Get(keyListTo))
	assert.Equal(t, "list-1", posts[0].Get("__VIEWSTATE"))

	require.NotNil(t, entries[0].Date)
	assert.True(t, entries[0].Date.Equal(time.Date(2026, 2, 25, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 8.0, entries[0].Hours)
	assert.Equal(t, "AdRoll - AdRoll", entries[0].Project)
	assert.Equal(t, "Software Development", entries[0].Assignment)
	assert.Equal(t, "-[ENG-1]: Importer", entries[0].Description)

	assert.Equal(t, 7.5, entries[1].Hours)
	assert.Equal(t, "Planning & review", entries[1].Description)

	assert.Equal(t, 0.5, entries[2].Hours)
	assert.Equal(t, "Onboarding", entries[2].Description)
	assert.True(t, entries[2].OnDay(to))

	require.NotNil(t, entries[3].Date, "unpadded dates are accepted")
	assert.True(t, entries[3].Date.Equal(time.Date(2026, 2, 5, 0, 0, 0, 0, time.Local)))
	assert.True(t, entries[3].OnDay(time.Date(2026, 2, 5, 17, 0, 0, 0, time.Local)))
}

func TestListEntries_MalformedDate(t *testing.T) {
	app := newFakeApp(t)
	app.listTable = table(
		headerRow,
		row("not-a-date", "8", "AdRoll - AdRoll", "Software Development", "first"),
		row("26/02/2026", "4", "AdRoll - AdRoll", "Meetings", "second"),
		row("", "12", "", "", ""),
	)
	c := dial(t, app)

	entries, err := c.ListEntries(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].Date)
	assert.False(t, entries[0].OnDay(time.Now()))
	assert.Equal(t, 8.0, entries[0].Hours)
	require.NotNil(t, entries[1].Date)
	assert.Equal(t, "second", entries[1].Description)
}

func TestListEntries_NonNumericHours(t *testing.T) {
	app := newFakeApp(t)
	app.listTable = table(
		headerRow,
		row("25/02/2026", "eight", "AdRoll - AdRoll", "Software Development", "x"),
		row("26/02/2026", "8", "AdRoll - AdRoll", "Software Development", "y"),
		row("", "8", "", "", ""),
	)
	c := dial(t, app)

	_, err := c.ListEntries(context.Background(), time.Now(), time.Now())
	var parseErr *timetracker.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "hours", parseErr.Column)
	assert.Equal(t, "eight", parseErr.Value)
	assert.Equal(t, 1, parseErr.Row)
}

func TestListEntries_NoDataRows(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{"no table", ""},
		{"header only", table(headerRow)},
		{"header and summary", table(headerRow, row("", "0", "", "", ""))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newFakeApp(t)
			app.listTable = tt.table
			c := dial(t, app)

			entries, err := c.ListEntries(context.Background(), time.Now(), time.Now())
			require.NoError(t, err)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)
		})
	}
}

func TestListEntries_ShortRow(t *testing.T) {
	app := newFakeApp(t)
	app.listTable = table(
		headerRow,
		row("25/02/2026", "8"),
		row("", "8", "", "", ""),
	)
	c := dial(t, app)

	_, err := c.ListEntries(context.Background(), time.Now(), time.Now())
	var parseErr *timetracker.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "row", parseErr.Column)
}
