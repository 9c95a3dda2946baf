package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jengzang/forgeheat/internal/models"
)

// ForgeJoName is the registry name of the self-hosted Forgejo client
const ForgeJoName = "ForgeJo"

type heatmapSample struct {
	Timestamp     int64 `json:"timestamp"`
	Contributions int64 `json:"contributions"`
}

// ForgeJo reads the flat heatmap endpoint and buckets samples into UTC days
type ForgeJo struct {
	getter jsonGetter
}

// ForgeJoOptions configures a ForgeJo client
type ForgeJoOptions struct {
	HTTPClient *http.Client
	Attempts   int
}

// NewForgeJo creates a ForgeJo client
func NewForgeJo(opts ForgeJoOptions) *ForgeJo {
	return &ForgeJo{getter: newJSONGetter(opts.HTTPClient, opts.Attempts)}
}

func (f *ForgeJo) Name() string { return ForgeJoName }

func (f *ForgeJo) GetStats(ctx context.Context, creds Credentials) ([]models.DailyCount, error) {
	base, err := normalizeBaseURL(ForgeJoName, creds.BaseURL)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("access_token", creds.Token)
	endpoint := fmt.Sprintf("%s/api/v1/users/%s/heatmap?%s", base, url.PathEscape(creds.Username), q.Encode())

	var samples []heatmapSample
	if err := f.getter.getJSON(ctx, ForgeJoName, endpoint, nil, &samples); err != nil {
		return nil, err
	}

	daily := make(models.Totals)
	for _, s := range samples {
		if s.Contributions <= 0 {
			continue
		}
		daily[time.Unix(s.Timestamp, 0).UTC().Format(models.DateLayout)] += s.Contributions
	}
	return daily.History(), nil
}
