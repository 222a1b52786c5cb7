// Package jira searches the issue tracker for the tickets the user is
// working on.
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/auto-time-tracker/internal/config"
	"github.com/Tiliavir/auto-time-tracker/internal/model"
)

const pageSize = 50

// Client is a read-only Jira REST client authenticated with an e-mail and
// API token.
type Client struct {
	baseURL string
	user    string
	email   string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.JiraConfig, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		user:    cfg.User,
		email:   cfg.Email,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// JQL returns the query for the user's in-flight sprint tickets.
func (c *Client) JQL() string {
	return fmt.Sprintf(
		"assignee = %s AND issuetype != Epic AND resolution = Unresolved AND status != Open AND Sprint != EMPTY",
		strconv.Quote(c.user),
	)
}

type searchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []issue `json:"issues"`
}

type issue struct {
	Key    string `json:"key"`
	Fields struct {
		Project struct {
			Name string `json:"name"`
		} `json:"project"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
	} `json:"fields"`
}

func (i issue) ticket() model.Ticket {
	return model.Ticket{
		ID:          i.Key,
		Project:     i.Fields.Project.Name,
		Status:      i.Fields.Status.Name,
		Summary:     i.Fields.Summary,
		Description: i.Fields.Description,
	}
}

// SearchAssigned returns the unresolved, non-epic tickets assigned to the
// user that are in a sprint and no longer open.
func (c *Client) SearchAssigned(ctx context.Context) ([]model.Ticket, error) {
	if c.baseURL == "" {
		return nil, errors.New("jira: empty base URL")
	}

	jql := c.JQL()
	tickets := []model.Ticket{}
	for startAt := 0; ; {
		q := url.Values{}
		q.Set("jql", jql)
		q.Set("fields", "project,status,summary,description")
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(pageSize))

		var page searchResponse
		if err := c.getJSON(ctx, "/rest/api/2/search", q, &page); err != nil {
			return nil, err
		}
		for _, i := range page.Issues {
			tickets = append(tickets, i.ticket())
		}
		c.log.Debug().Int("start_at", startAt).Int("count", len(page.Issues)).Int("total", page.Total).Msg("jira search page")

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}
	return tickets, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.email, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding jira response: %w", err)
	}
	return nil
}
