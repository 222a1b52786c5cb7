package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Template is the annotated config written on first run and by
// `att config init`. Every setting can also be given as an environment
// variable: ATT_ + the upper-cased key with dots replaced by underscores,
// e.g. ATT_TIME_TRACKER_PASSWORD.
const Template = `# att configuration – ~/.att/config.yaml
#
# Run "att config show" to print the effective values.

# ── Legacy time tracker ────────────────────────────────────────────────────
time_tracker:
  # Root URL of the time tracker web application.
  base_url: ""
  user: ""
  # Prefer ATT_TIME_TRACKER_PASSWORD over storing the password here.
  password: ""
  # Labels exactly as shown in the submission form dropdowns.
  project: ""
  assignment: ""
  focal_point: ""
  # Per-request timeout.
  timeout: 30s

# ── Jira (tickets listed in the entry description) ─────────────────────────
jira:
  base_url: ""        # e.g. https://example.atlassian.net
  user: ""            # username the tickets are assigned to
  email: ""           # account e-mail used for API authentication
  token: ""           # API token (or ATT_JIRA_TOKEN)

# ── Microsoft Graph / Outlook calendar ─────────────────────────────────────
outlook:
  # Add accepted meetings to the description (see include_meetings).
  enabled: false
  # "common" works for personal accounts and most organisations.
  tenant_id: "common"
  # Public Azure CLI app ID; replace with your own app registration if needed.
  client_id: "04b07795-8542-4c4a-95af-30b2c573d5ab"
  # IANA timezone for event times, e.g. "Europe/Berlin". Empty = local time.
  timezone: ""

# ── Submission ─────────────────────────────────────────────────────────────
hours_per_day: 8
# Per-weekday overrides (mon, tue, wed, thu, fri, sat, sun).
hours_per_day_override: {}
#   fri: 6
# Extra description line appended on a weekday.
tasks_append: {}
#   mon: "Weekly planning"
working_days: [mon, tue, wed, thu, fri]
include_meetings: false

# Cron spec for "att schedule" (minute hour day-of-month month day-of-week).
schedule: "0 18 * * MON-FRI"

log:
  level: info       # debug, info, warn, error
  format: console   # console or json
`

// WriteTemplate creates the config directory and writes Template to path.
// It refuses to overwrite an existing file unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking config file: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
