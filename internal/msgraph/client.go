// Package msgraph reads the user's Outlook calendar through Microsoft Graph.
package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/auto-time-tracker/internal/model"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Client is an authenticated Microsoft Graph API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timezone   string
	log        zerolog.Logger
}

// NewClient creates a Graph client. timezone is an IANA name used both for
// the day boundaries and for the event times Graph returns; "" means local
// time.
func NewClient(ctx context.Context, ts oauth2.TokenSource, timezone string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: oauth2.NewClient(ctx, ts),
		baseURL:    graphBaseURL,
		timezone:   timezone,
		log:        log,
	}
}

// graphEvent represents a Microsoft Graph calendar event.
type graphEvent struct {
	ID             string `json:"id"`
	Subject        string `json:"subject"`
	IsAllDay       bool   `json:"isAllDay"`
	IsCancelled    bool   `json:"isCancelled"`
	Sensitivity    string `json:"sensitivity"` // "normal", "personal", "private", "confidential"
	ShowAs         string `json:"showAs"`      // "free", "tentative", "busy", "oof", "workingElsewhere", "unknown"
	ResponseStatus struct {
		Response string `json:"response"` // "none", "organizer", "tentativelyAccepted", "accepted", "declined", "notResponded"
	} `json:"responseStatus"`
	Start struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"end"`
}

// calendarViewResponse is the Graph API paged response for calendar events.
type calendarViewResponse struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

// location returns the configured time zone, falling back to local time.
func (c *Client) location() *time.Location {
	if c.timezone != "" {
		if l, err := time.LoadLocation(c.timezone); err == nil {
			return l
		}
		c.log.Warn().Str("timezone", c.timezone).Msg("unknown timezone, using local time")
	}
	return time.Local
}

// ListEvents returns the events of the given calendar day. Events that
// cannot be imported (all-day, private, shown as free) are left out;
// callers filter on Status.
func (c *Client) ListEvents(ctx context.Context, day time.Time) ([]model.CalendarEvent, error) {
	loc := c.location()
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	raw, err := c.getCalendarView(ctx, from, to)
	if err != nil {
		return nil, err
	}

	events := []model.CalendarEvent{}
	for _, e := range raw {
		if shouldSkip(e) {
			continue
		}
		ev, err := mapEvent(e, loc)
		if err != nil {
			c.log.Warn().Err(err).Str("subject", e.Subject).Msg("skipping calendar event")
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// getCalendarView fetches calendar events in [from, to) using the calendarView endpoint.
func (c *Client) getCalendarView(ctx context.Context, from, to time.Time) ([]graphEvent, error) {
	startISO := from.UTC().Format(time.RFC3339)
	endISO := to.UTC().Format(time.RFC3339)

	endpoint := fmt.Sprintf("%s/me/calendarView?startDateTime=%s&endDateTime=%s&$top=100",
		c.baseURL,
		url.QueryEscape(startISO),
		url.QueryEscape(endISO),
	)

	var all []graphEvent
	for endpoint != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.timezone != "" {
			req.Header.Set("Prefer", fmt.Sprintf(`outlook.timezone="%s"`, c.timezone))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("graph API request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("graph API error %d: %s", resp.StatusCode, string(body))
		}

		var page calendarViewResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding graph response: %w", err)
		}

		all = append(all, page.Value...)
		endpoint = page.NextLink
	}
	return all, nil
}
