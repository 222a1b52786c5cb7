package timetracker_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

const (
	keyUser        = "ctl00$ContentPlaceHolder$UserNameTextBox"
	keyPassword    = "ctl00$ContentPlaceHolder$PasswordTextBox"
	keyLoginButton = "ctl00$ContentPlaceHolder$LoginButton"
	keyProject     = "ctl00$ContentPlaceHolder$idProyectoDropDownList"
	keyDate        = "ctl00$ContentPlaceHolder$txtFrom"
	keyHours       = "ctl00$ContentPlaceHolder$TiempoTextBox"
	keyAssignment  = "ctl00$ContentPlaceHolder$idTipoAsignacionDropDownList"
	keyDescription = "ctl00$ContentPlaceHolder$DescripcionTextBox"
	keyFocalPoint  = "ctl00$ContentPlaceHolder$idFocalPointClientDropDownList"
	keyScript      = "ctl00$ContentPlaceHolder$ScriptManager"
	keyAccept      = "ctl00$ContentPlaceHolder$btnAceptar"
	keyListTo      = "ctl00$ContentPlaceHolder$txtTo"
)

// fakeApp mimics the three ASP.NET pages of the time tracker.
type fakeApp struct {
	t      *testing.T
	srv    *httptest.Server
	user   string
	pass   string
	accept bool

	// listTable is served as the listing result.
	listTable string

	mu     sync.Mutex
	calls  map[string]int
	posted map[string][]url.Values
}

func newFakeApp(t *testing.T) *fakeApp {
	t.Helper()
	app := &fakeApp{
		t:      t,
		user:   "jdoe",
		pass:   "s3cret",
		accept: true,
		calls:  map[string]int{},
		posted: map[string][]url.Values{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/default.aspx", app.login)
	mux.HandleFunc("/Home.aspx", app.home)
	mux.HandleFunc("/CargaTimeTracker.aspx", app.submit)
	mux.HandleFunc("/ListaTimeTracker.aspx", app.list)
	app.srv = httptest.NewServer(app.record(mux))
	t.Cleanup(app.srv.Close)
	return app
}

func (a *fakeApp) options() timetracker.Options {
	return timetracker.Options{BaseURL: a.srv.URL, User: a.user, Password: a.pass}
}

func (a *fakeApp) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			a.t.Errorf("parsing form: %v", err)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "Mozilla/5.0") {
			http.Error(w, "unsupported browser", http.StatusForbidden)
			return
		}
		endpoint := strings.TrimPrefix(r.URL.Path, "/")
		a.mu.Lock()
		a.calls[endpoint]++
		a.calls["total"]++
		if r.Method == http.MethodPost {
			a.posted[endpoint] = append(a.posted[endpoint], r.PostForm)
		}
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (a *fakeApp) count(endpoint string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[endpoint]
}

func (a *fakeApp) posts(endpoint string) []url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.posted[endpoint]
}

func hidden(name, value string) string {
	return fmt.Sprintf(`<input type="hidden" name="%s" id="%s" value="%s" />`, name, name, value)
}

func page(body ...string) string {
	return "<html><body><form method=\"post\">\n" + strings.Join(body, "\n") + "\n</form></body></html>"
}

func (a *fakeApp) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost &&
		r.PostForm.Get(keyUser) == a.user &&
		r.PostForm.Get(keyPassword) == a.pass &&
		r.PostForm.Get(keyLoginButton) == "Login" {
		http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "sess-1", Path: "/"})
		http.Redirect(w, r, "/Home.aspx", http.StatusFound)
		return
	}
	fmt.Fprint(w, page(
		hidden("__VIEWSTATE", "abc"),
		hidden("__EVENTVALIDATION", "ev-login"),
		`<input name="`+keyUser+`" type="text" />`,
	))
}

func (a *fakeApp) authorized(w http.ResponseWriter, r *http.Request) bool {
	if c, err := r.Cookie("ASP.NET_SessionId"); err != nil || c.Value != "sess-1" {
		http.Redirect(w, r, "/default.aspx", http.StatusFound)
		return false
	}
	return true
}

func (a *fakeApp) home(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}
	fmt.Fprint(w, page(hidden("__VIEWSTATE", "home")))
}

const projectSelect = `<select name="ctl00$ContentPlaceHolder$idProyectoDropDownList" id="proj">
	<option selected="selected" value="">Select...</option>
	<option value="12">AdRoll - AdRoll</option>
	<option value="13">Internal</option>
</select>`

const dependentSelects = `<select name="ctl00$ContentPlaceHolder$idTipoAsignacionDropDownList">
	<option value="">Select...</option>
	<option value="7">Software Development</option>
	<option value="8">Meetings</option>
</select>
<select name="ctl00$ContentPlaceHolder$idFocalPointClientDropDownList">
	<option value="">Select...</option>
	<option value="3">Robbie Holmes</option>
</select>`

func (a *fakeApp) submit(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}
	if r.Method == http.MethodGet {
		fmt.Fprint(w, page(hidden("__VIEWSTATE", "submit-1"), projectSelect))
		return
	}

	f := r.PostForm
	if f.Get("__ASYNCPOST") == "true" {
		if f.Get(keyProject) != "12" {
			fmt.Fprint(w, page(hidden("__VIEWSTATE", "submit-2"), projectSelect))
			return
		}
		fmt.Fprint(w, "1|#||4|updatePanel|ctl00_ContentPlaceHolder_UpdatePanel1|"+
			projectSelect+dependentSelects+"|"+hidden("__VIEWSTATE", "submit-2"))
		return
	}

	if a.accept && f.Get("__VIEWSTATE") == "submit-2" &&
		f.Get(keyProject) == "12" && f.Get(keyAssignment) == "7" && f.Get(keyFocalPoint) == "3" &&
		f.Get(keyAccept) == "Accept" && f.Get(keyHours) != "" {
		http.Redirect(w, r, "/ListaTimeTracker.aspx", http.StatusFound)
		return
	}
	fmt.Fprint(w, page(hidden("__VIEWSTATE", "submit-3"), projectSelect, dependentSelects,
		`<span class="error">Invalid data</span>`))
}

func (a *fakeApp) list(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}
	if r.Method == http.MethodGet {
		fmt.Fprint(w, page(hidden("__VIEWSTATE", "list-1")))
		return
	}
	fmt.Fprint(w, page(hidden("__VIEWSTATE", "list-2"), a.listTable))
}

func table(rows ...string) string {
	return "<table id=\"grid\" cellspacing=\"0\">\n" + strings.Join(rows, "\n") + "\n</table>"
}

func row(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr class=\"row\">")
	for _, c := range cells {
		b.WriteString("<td>" + c + "</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

const headerRow = `<tr class="header"><th>Date</th><th>Hours</th><th>Project</th><th>Assignment</th><th>Description</th><th></th></tr>`
