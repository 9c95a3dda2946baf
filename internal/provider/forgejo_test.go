package provider_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/forgeheat/internal/models"
	"github.com/jengzang/forgeheat/internal/provider"
)

func TestForgeJo_BucketsSamplesByUTCDay(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/dave/heatmap", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("access_token"))
		_, _ = fmt.Fprintf(w, `[
			{"timestamp": %d, "contributions": 2},
			{"timestamp": %d, "contributions": 3},
			{"timestamp": %d, "contributions": 1},
			{"timestamp": %d, "contributions": 0}
		]`,
			day.Add(1*time.Hour).Unix(),
			day.Add(23*time.Hour+59*time.Minute).Unix(),
			day.Add(24*time.Hour).Unix(),
			day.Add(48*time.Hour).Unix(),
		)
	}))
	defer srv.Close()

	counts, err := provider.NewForgeJo(provider.ForgeJoOptions{}).GetStats(context.Background(), provider.Credentials{
		Username: "dave",
		Token:    "tok",
		BaseURL:  srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, []models.DailyCount{
		{Date: "2024-03-10", Count: 5},
		{Date: "2024-03-11", Count: 1},
	}, counts)
}

func TestForgeJo_Errors(t *testing.T) {
	t.Parallel()

	client := provider.NewForgeJo(provider.ForgeJoOptions{Attempts: 1})

	_, err := client.GetStats(context.Background(), provider.Credentials{Username: "dave"})
	assert.ErrorIs(t, err, provider.ErrMissingBaseURL)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<html>login</html>`)
	}))
	defer srv.Close()

	_, err = client.GetStats(context.Background(), provider.Credentials{Username: "dave", BaseURL: srv.URL})
	assert.ErrorIs(t, err, provider.ErrParse)

	forbidden := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer forbidden.Close()

	_, err = client.GetStats(context.Background(), provider.Credentials{Username: "dave", Token: "leaked", BaseURL: forbidden.URL})
	assert.ErrorIs(t, err, provider.ErrAuth)
	assert.NotContains(t, err.Error(), "leaked")
}

func TestForgeJo_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := provider.NewForgeJo(provider.ForgeJoOptions{Attempts: 1}).GetStats(ctx, provider.Credentials{
		Username: "dave",
		BaseURL:  srv.URL,
	})
	assert.ErrorIs(t, err, provider.ErrNetwork)
}
