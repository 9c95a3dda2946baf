package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/forgeheat/internal/models"
)

func TestParseForge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    string
		want    models.ForgeRequest
		wantErr bool
	}{
		{"hosted", "github,octo,tok", models.ForgeRequest{Name: "github", Username: "octo", Token: "tok"}, false},
		{"self hosted", "gitlab, tanuki ,tok,https://gitlab.example.com",
			models.ForgeRequest{Name: "gitlab", Username: "tanuki", Token: "tok", URL: "https://gitlab.example.com"}, false},
		{"too few", "github,octo", models.ForgeRequest{}, true},
		{"too many", "a,b,c,d,e", models.ForgeRequest{}, true},
		{"no name", ",octo,tok", models.ForgeRequest{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseForge(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseForge_RedactsToken(t *testing.T) {
	t.Parallel()

	_, err := parseForge("a,b,secret-token,d,e")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func runFetch(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("LOG_LEVEL", "error")

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "fetch"}, args...))
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestFetch(t *testing.T) {
	forgejo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/alice/heatmap", r.URL.Path)
		_, _ = w.Write([]byte(`[{"timestamp":1704067200,"contributions":3},{"timestamp":1704070800,"contributions":2}]`))
	}))
	defer forgejo.Close()

	spec := "forgejo,alice,tok," + forgejo.URL

	out := runFetch(t, "--forge", spec, "--json", "--history")
	var stats models.StatsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, []models.DailyCount{{Date: "2024-01-01", Count: 5}}, stats.History)

	out = runFetch(t, "--forge", spec, "--json")
	var heatmap models.HeatmapResponse
	require.NoError(t, json.Unmarshal([]byte(out), &heatmap))
	assert.EqualValues(t, 5, heatmap.Summary.Total)
	require.Len(t, heatmap.Sources, 1)
	assert.Equal(t, models.SourceOK, heatmap.Sources[0].Status)

	out = runFetch(t, "--forge", spec)
	assert.Contains(t, out, "5 contributions")
	assert.Contains(t, out, "forgejo/alice: ok (1 days)")
	assert.Equal(t, 1, strings.Count(out, "Less"))
}

func TestFetch_RequiresForge(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"fetch"})
	require.Error(t, cmd.Execute())
}
