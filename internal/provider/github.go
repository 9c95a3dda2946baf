package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v61/github"
	"golang.org/x/xerrors"

	"github.com/jengzang/forgeheat/internal/models"
)

// GitHubName is the registry name of the hosted GitHub client
const GitHubName = "GitHub"

const contributionsQuery = `
query($login: String!) {
  user(login: $login) {
    contributionsCollection {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type contributionDay struct {
	Date              string `json:"date"`
	ContributionCount int64  `json:"contributionCount"`
}

type graphqlResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					Weeks []struct {
						ContributionDays []contributionDay `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"errors"`
}

// GitHub reads the contribution calendar of the hosted forge with one
// GraphQL query. The base URL of a request is ignored
type GitHub struct {
	httpClient *http.Client
	apiURL     *url.URL
	attempts   int
}

// GitHubOptions configures a GitHub client
type GitHubOptions struct {
	HTTPClient *http.Client
	// APIURL overrides the REST root (default https://api.github.com/); the
	// GraphQL endpoint is resolved relative to it
	APIURL   string
	Attempts int
}

// NewGitHub creates a GitHub client
func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	g := &GitHub{httpClient: opts.HTTPClient, attempts: opts.Attempts}
	if opts.APIURL != "" {
		raw := opts.APIURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, xerrors.Errorf("parse github api url: %w", err)
		}
		g.apiURL = u
	}
	return g, nil
}

func (g *GitHub) Name() string { return GitHubName }

// GetStats returns one year of non-zero calendar days
func (g *GitHub) GetStats(ctx context.Context, creds Credentials) ([]models.DailyCount, error) {
	client := github.NewClient(g.httpClient).WithAuthToken(creds.Token)
	client.UserAgent = userAgent
	if g.apiURL != nil {
		u := *g.apiURL
		client.BaseURL = &u
	}

	body := graphqlRequest{
		Query:     contributionsQuery,
		Variables: map[string]any{"login": creds.Username},
	}

	var resp graphqlResponse
	err := withRetry(ctx, g.attempts, func() (bool, error) {
		// The request body is consumed on send, so build a fresh one per attempt
		req, err := client.NewRequest(http.MethodPost, "graphql", body)
		if err != nil {
			return false, newError(GitHubName, ErrNetwork, xerrors.Errorf("build request: %w", err))
		}
		resp = graphqlResponse{}
		_, err = client.Do(ctx, req, &resp)
		if err == nil {
			return false, nil
		}
		kind, retryable := classifyGitHubError(err)
		return retryable, newError(GitHubName, kind, err)
	})
	if err != nil {
		var pe *Error
		if !errors.As(err, &pe) {
			err = newError(GitHubName, ErrNetwork, err)
		}
		return nil, err
	}

	if resp.Data.User == nil {
		msg := "user not found"
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].Message
		}
		return nil, newError(GitHubName, ErrParse, xerrors.New(msg))
	}

	var out []models.DailyCount
	for _, week := range resp.Data.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			// Upstream lists every calendar day; empty ones carry nothing
			if day.ContributionCount <= 0 {
				continue
			}
			if _, err := time.Parse(models.DateLayout, day.Date); err != nil {
				return nil, newError(GitHubName, ErrParse, xerrors.Errorf("invalid date %q", day.Date))
			}
			out = append(out, models.DailyCount{Date: day.Date, Count: day.ContributionCount})
		}
	}
	return out, nil
}

// classifyGitHubError maps a go-github error onto a failure kind
func classifyGitHubError(err error) (kind error, retryable bool) {
	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
		synErr   *json.SyntaxError
		typeErr  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return ErrNetwork, false
	case errors.As(err, &respErr) && respErr.Response != nil:
		return classifyStatus(respErr.Response.StatusCode)
	case errors.As(err, &synErr), errors.As(err, &typeErr):
		return ErrParse, false
	default:
		return ErrNetwork, true
	}
}
