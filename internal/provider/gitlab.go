package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"

	"github.com/jengzang/forgeheat/internal/models"
)

// GitLabName is the registry name of the self-hosted GitLab client
const GitLabName = "GitLab"

const (
	gitlabPerPage         = 100
	gitlabDefaultMaxPages = 100
	gitlabWindowYears     = 3
)

type gitlabPushData struct {
	CommitCount *int64 `json:"commit_count"`
}

type gitlabEvent struct {
	CreatedAt time.Time       `json:"created_at"`
	PushData  *gitlabPushData `json:"push_data"`
}

// GitLab counts pushed commits per day from the user events API over a
// trailing three-year window
type GitLab struct {
	getter   jsonGetter
	clock    quartz.Clock
	location *time.Location
	logger   slog.Logger
	perPage  int
	maxPages int
}

// GitLabOptions configures a GitLab client
type GitLabOptions struct {
	HTTPClient *http.Client
	Clock      quartz.Clock
	Logger     slog.Logger
	// Location decides which calendar day starts the window. Defaults to UTC
	Location *time.Location
	// MaxPages bounds pagination when the upstream never sends a short page
	MaxPages int
	PerPage  int
	Attempts int
}

// NewGitLab creates a GitLab client
func NewGitLab(opts GitLabOptions) *GitLab {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = gitlabDefaultMaxPages
	}
	if opts.PerPage <= 0 {
		opts.PerPage = gitlabPerPage
	}
	return &GitLab{
		getter:   newJSONGetter(opts.HTTPClient, opts.Attempts),
		clock:    opts.Clock,
		location: opts.Location,
		logger:   opts.Logger,
		perPage:  opts.PerPage,
		maxPages: opts.MaxPages,
	}
}

func (g *GitLab) Name() string { return GitLabName }

// GetStats walks pages of push events until a short page arrives or the
// page limit is hit. An event without a commit count counts as one
func (g *GitLab) GetStats(ctx context.Context, creds Credentials) ([]models.DailyCount, error) {
	base, err := normalizeBaseURL(GitLabName, creds.BaseURL)
	if err != nil {
		return nil, err
	}

	after := g.clock.Now().In(g.location).AddDate(-gitlabWindowYears, 0, 0).Format(models.DateLayout)
	header := http.Header{"PRIVATE-TOKEN": []string{creds.Token}}
	daily := make(models.Totals)

	for page := 1; ; page++ {
		if page > g.maxPages {
			g.logger.Warn(ctx, "gitlab page limit reached, history truncated",
				slog.F("username", creds.Username),
				slog.F("max_pages", g.maxPages),
			)
			break
		}

		q := url.Values{}
		q.Set("action", "pushed")
		q.Set("after", after)
		q.Set("per_page", strconv.Itoa(g.perPage))
		q.Set("page", strconv.Itoa(page))
		endpoint := fmt.Sprintf("%s/api/v4/users/%s/events?%s", base, url.PathEscape(creds.Username), q.Encode())

		var events []gitlabEvent
		if err := g.getter.getJSON(ctx, GitLabName, endpoint, header, &events); err != nil {
			return nil, err
		}

		for _, ev := range events {
			count := int64(1)
			if ev.PushData != nil && ev.PushData.CommitCount != nil {
				count = *ev.PushData.CommitCount
			}
			if count < 0 {
				count = 0
			}
			daily[ev.CreatedAt.UTC().Format(models.DateLayout)] += count
		}

		if len(events) < g.perPage {
			break
		}
	}

	return daily.History(), nil
}
