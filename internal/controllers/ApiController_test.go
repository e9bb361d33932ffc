package controllers

import (
	"creatorstats/internal/clients"
	"creatorstats/internal/models"
	"creatorstats/internal/services"
	"creatorstats/internal/storage"
	"creatorstats/internal/testutil"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	yt, ig, th *testutil.MockFetcher
	store      storage.Store
	cache      *testutil.MockCache
	ac         *ApiController
}

func newFixture(store storage.Store) *fixture {
	f := &fixture{
		yt: &testutil.MockFetcher{
			P:           models.PlatformYouTube,
			IsConnected: true,
			Snapshot: models.SnapshotResult{
				Snapshot: models.StatsSnapshot{Platform: models.PlatformYouTube, FollowerCount: 14100, ViewCount: 500000, ContentCount: 42},
				Source:   models.SourceFresh,
				CachedAt: testNow,
			},
			Items:  models.ItemsResult{Items: []models.ContentItem{{ID: "v1", LikeCount: 4}}, Source: models.SourceCached},
			Status: models.CallStatus{Platform: models.PlatformYouTube, MaxCalls: 4, RemainingCalls: 3, Reason: "Ready"},
			Cfg:    models.YouTubeConfig{APIKey: "k", ChannelID: "UC1"},
		},
		ig:    &testutil.MockFetcher{P: models.PlatformInstagram, Cfg: models.InstagramConfig{}},
		th:    &testutil.MockFetcher{P: models.PlatformThreads, IsConnected: true, IsSimulated: true},
		store: store,
		cache: testutil.NewMockCache(),
	}

	clock := &models.FixedClock{T: testNow}
	logger := &testutil.MockLogger{}
	build := func(m *testutil.MockFetcher) *services.PlatformService {
		c := services.NewCollector(m, store, clock, time.UTC, logger, testutil.NewMockMetrics())
		return services.NewPlatformService(m, c, clock, time.UTC, logger)
	}
	registry := services.NewRegistry(build(f.yt), build(f.ig), build(f.th))
	f.ac = NewApiController(logger, registry, services.NewAggregator(registry, clock, time.UTC), f.cache)
	return f
}

func do(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

// --- snapshot, status, items ---

func TestGetSnapshot_DefaultsToYouTube(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetSnapshot, http.MethodGet, "/snapshot", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var res models.SnapshotResult
	decode(t, rr, &res)
	assert.Equal(t, int64(14100), res.Snapshot.FollowerCount)
	assert.Equal(t, models.SourceFresh, res.Source)
}

func TestGetSnapshot_UnknownPlatform(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetSnapshot, http.MethodGet, "/snapshot?p=tiktok", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetStatus(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetStatus, http.MethodGet, "/status?p=youtube", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var status models.CallStatus
	decode(t, rr, &status)
	assert.Equal(t, 3, status.RemainingCalls)
	assert.Equal(t, "Ready", status.Reason)
}

func TestGetItems(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetItems, http.MethodGet, "/items?limit=abc", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var res models.ItemsResult
	decode(t, rr, &res)
	require.Len(t, res.Items, 1)
	assert.Equal(t, models.SourceCached, res.Source)
}

func TestPositiveParam(t *testing.T) {
	tests := []struct {
		query    string
		expected int
	}{
		{"", 30},
		{"days=7", 7},
		{"days=0", 30},
		{"days=-3", 30},
		{"days=abc", 30},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/history/period?"+tt.query, nil)
			assert.Equal(t, tt.expected, positiveParam(req, "days", 30))
		})
	}
}

// --- analytics and overview ---

func TestGetAnalytics_CachesPerPlatformAndWindow(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetAnalytics, http.MethodGet, "/analytics?w=7d", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var a models.Analytics
	decode(t, rr, &a)
	assert.Len(t, a.Followers, 7)
	assert.Equal(t, float64(14100), a.Followers[6].Value)

	_, ok := f.cache.Get("analytics:youtube:7d")
	assert.True(t, ok)

	f.yt.Snapshot.Snapshot.FollowerCount = 1
	cached := do(f.ac.GetAnalytics, http.MethodGet, "/analytics?w=7d", "")
	assert.Equal(t, rr.Body.String(), cached.Body.String())
}

func TestGetAnalytics_UnknownWindowFallsBackToSixMonths(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetAnalytics, http.MethodGet, "/analytics?w=2w", "")

	var a models.Analytics
	decode(t, rr, &a)
	assert.Equal(t, models.TimeWindow6m, a.Window)
	assert.Len(t, a.Followers, 6)
}

func TestGetOverview(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetOverview, http.MethodGet, "/overview?w=3m", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var ov models.Overview
	decode(t, rr, &ov)
	assert.Equal(t, []models.Platform{models.PlatformYouTube, models.PlatformThreads}, ov.Platforms)
	assert.Equal(t, int64(14100), ov.Totals.Followers)
	assert.Len(t, ov.Growth, 3)
	_, ok := f.cache.Get("overview:3m")
	assert.True(t, ok)
}

// --- collection ---

func TestCollect_AddsOncePerDay(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.Collect, http.MethodPost, "/collect", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	var res collectResponse
	decode(t, rr, &res)
	assert.True(t, res.Added)
	assert.Equal(t, "2024-06-15", res.Record.Date)
	assert.Equal(t, 1, f.cache.ClearCalls)

	rr = do(f.ac.Collect, http.MethodPost, "/collect", "")
	decode(t, rr, &res)
	assert.False(t, res.Added)
	assert.Equal(t, 1, f.cache.ClearCalls, "nothing changed, nothing cleared")
}

func TestCollect_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		blocked bool
	}{
		{"configuration", &models.ConfigurationError{Platform: models.PlatformYouTube, Missing: []string{"apiKey"}}, http.StatusPreconditionFailed, false},
		{"blocked", &models.RemoteCallError{Platform: models.PlatformYouTube, Blocked: true}, http.StatusBadGateway, true},
		{"upstream", &models.RemoteCallError{Platform: models.PlatformYouTube, StatusCode: 403}, http.StatusBadGateway, false},
		{"storage", fmt.Errorf("write: %w", testutil.ErrStoreUnavailable), http.StatusInternalServerError, false},
		{"oauth state", services.ErrOAuthState, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(storage.NewMemoryStore())
			f.yt.CollectErr = tt.err

			rr := do(f.ac.Collect, http.MethodPost, "/collect", "")

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusInternalServerError {
				return
			}
			var body errorResponse
			decode(t, rr, &body)
			assert.Equal(t, tt.err.Error(), body.Error)
			assert.Equal(t, tt.blocked, body.Blocked)
		})
	}
}

func TestCollect_ConfigurationErrorListsMissing(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())
	f.yt.CollectErr = &models.ConfigurationError{Platform: models.PlatformYouTube, Missing: []string{"apiKey", "channelId"}}

	rr := do(f.ac.Collect, http.MethodPost, "/collect", "")

	var body errorResponse
	decode(t, rr, &body)
	assert.Equal(t, []string{"apiKey", "channelId"}, body.Missing)
	assert.Zero(t, f.cache.ClearCalls)
}

func TestShouldCollect(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	var res shouldCollectResponse
	decode(t, do(f.ac.ShouldCollect, http.MethodGet, "/collect/should", ""), &res)
	assert.True(t, res.ShouldCollect)
	assert.True(t, res.LastCollection.IsZero())

	do(f.ac.Collect, http.MethodPost, "/collect", "")
	decode(t, do(f.ac.ShouldCollect, http.MethodGet, "/collect/should", ""), &res)
	assert.False(t, res.ShouldCollect)
	assert.True(t, res.LastCollection.Equal(testNow))
}

// --- history ---

func seedHistory(t *testing.T, store storage.Store) {
	t.Helper()
	series := models.HistoricalSeries{DailyStats: []models.DailyStatRecord{
		{Date: "2024-06-01", SubscriberCount: 100},
		{Date: "2024-06-10", SubscriberCount: 200},
		{Date: "2024-06-14", SubscriberCount: 300},
		{Date: "2024-05-01", SubscriberCount: 50},
	}}
	require.NoError(t, storage.Save(store, models.PlatformYouTube.HistoryKey(), series))
}

func TestGetHistory(t *testing.T) {
	store := storage.NewMemoryStore()
	seedHistory(t, store)
	f := newFixture(store)

	rr := do(f.ac.GetHistory, http.MethodGet, "/history", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var series models.HistoricalSeries
	decode(t, rr, &series)
	assert.Len(t, series.DailyStats, 4)
}

func TestGetHistory_EmptyIsAnEmptyList(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetHistory, http.MethodGet, "/history?p=instagram", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"dailyStats":[]`)
}

func TestGetHistoryPeriod(t *testing.T) {
	store := storage.NewMemoryStore()
	seedHistory(t, store)
	f := newFixture(store)

	rr := do(f.ac.GetHistoryPeriod, http.MethodGet, "/history/period?days=7", "")

	var records []models.DailyStatRecord
	decode(t, rr, &records)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-06-10", records[0].Date)
	_, ok := f.cache.Get("period:youtube:7")
	assert.True(t, ok)
}

func TestGetHistoryMonthly(t *testing.T) {
	store := storage.NewMemoryStore()
	seedHistory(t, store)
	f := newFixture(store)

	rr := do(f.ac.GetHistoryMonthly, http.MethodGet, "/history/monthly?months=1", "")

	var months []models.MonthlyAggregate
	decode(t, rr, &months)
	require.Len(t, months, 1)
	assert.Equal(t, int64(200), months[0].Subscribers)
	assert.Equal(t, "Jun 2024", months[0].Month)
}

func TestHistory_StorageFailureIs500(t *testing.T) {
	f := newFixture(testutil.FailingStore{})

	for name, h := range map[string]http.HandlerFunc{
		"history": f.ac.GetHistory,
		"period":  f.ac.GetHistoryPeriod,
		"monthly": f.ac.GetHistoryMonthly,
		"clear":   f.ac.ClearHistory,
	} {
		t.Run(name, func(t *testing.T) {
			rr := do(h, http.MethodGet, "/", "")
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
		})
	}
	assert.Empty(t, f.cache.Data, "errors are not cached")
}

func TestClearHistory(t *testing.T) {
	store := storage.NewMemoryStore()
	seedHistory(t, store)
	f := newFixture(store)
	f.cache.Set("history:youtube", []byte("{}"))

	rr := do(f.ac.ClearHistory, http.MethodPost, "/history/clear", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, f.cache.ClearCalls)
	_, ok, _ := store.Get(models.PlatformYouTube.HistoryKey())
	assert.False(t, ok)
}

// --- config lifecycle ---

func TestGetConfig(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.GetConfig, http.MethodGet, "/config?p=threads", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var res map[string]any
	decode(t, rr, &res)
	assert.Equal(t, "threads", res["platform"])
	assert.Equal(t, true, res["connected"])
	assert.Equal(t, true, res["simulated"])
	assert.Equal(t, false, res["hasApiKey"])
}

func TestGetConfig_MasksSecrets(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())
	f.yt.Cfg = models.YouTubeConfig{APIKey: "AIzaSyA-secret-1234", ChannelID: "UC1", RefreshToken: "rt"}

	rr := do(f.ac.GetConfig, http.MethodGet, "/config?p=youtube", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "AIzaSyA-secret")
	var res struct {
		HasAPIKey bool                 `json:"hasApiKey"`
		Config    models.YouTubeConfig `json:"config"`
	}
	decode(t, rr, &res)
	assert.True(t, res.HasAPIKey)
	assert.Equal(t, "***************1234", res.Config.APIKey)
	assert.Equal(t, "**", res.Config.RefreshToken)
	assert.Equal(t, "UC1", res.Config.ChannelID)
}

func TestUpdateConfig(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.UpdateConfig, http.MethodPost, "/config?p=instagram", `{"accessToken":"tok"}`)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, f.ig.DecodedConfigs, 1)
	assert.JSONEq(t, `{"accessToken":"tok"}`, string(f.ig.DecodedConfigs[0]))
	assert.Equal(t, 1, f.cache.ClearCalls)
}

func TestUpdateConfig_InvalidPayload(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())
	f.yt.DecodeErr = fmt.Errorf("%w for youtube: unexpected EOF", services.ErrInvalidConfig)

	rr := do(f.ac.UpdateConfig, http.MethodPost, "/config", `{`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, f.cache.ClearCalls)
}

func TestUpdateConfig_BodyTooLarge(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())
	body := `{"apiKey":"` + strings.Repeat("a", maxRequestBodySize) + `"}`

	rr := do(f.ac.UpdateConfig, http.MethodPost, "/config", body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, f.yt.DecodedConfigs)
}

func TestUpdateConfig_StoreFailure(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())
	f.yt.DecodeErr = testutil.ErrStoreUnavailable

	rr := do(f.ac.UpdateConfig, http.MethodPost, "/config", `{"apiKey":"k"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDisconnect(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.Disconnect, http.MethodPost, "/disconnect?p=youtube", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, f.yt.DisconnectCalls)
	assert.Equal(t, 1, f.cache.ClearCalls)
}

func TestCacheDemoData(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.CacheDemoData, http.MethodPost, "/demo/cache?p=instagram", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, f.ig.DemoCalls)
}

// --- oauth ---

func TestGetOAuthURL(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())
	f.yt.OAuthURL = "https://accounts.google.com/o/oauth2/v2/auth?state=s1"

	rr := do(f.ac.GetOAuthURL, http.MethodGet, "/oauth/url?p=youtube", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"url":"https://accounts.google.com/o/oauth2/v2/auth?state=s1"}`, rr.Body.String())
}

func TestGetOAuthURL_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unsupported platform", clients.ErrOAuthUnsupported, http.StatusBadRequest},
		{"app not configured", &models.ConfigurationError{Platform: models.PlatformInstagram, Missing: []string{"clientId"}}, http.StatusPreconditionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(storage.NewMemoryStore())
			f.ig.OAuthErr = tt.err

			rr := do(f.ac.GetOAuthURL, http.MethodGet, "/oauth/url?p=instagram", "")

			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestCompleteOAuth(t *testing.T) {
	f := newFixture(storage.NewMemoryStore())

	rr := do(f.ac.CompleteOAuth, http.MethodPost, "/oauth/callback?p=instagram", `{"code":"c1","state":"s1"}`)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"c1"}, f.ig.OAuthCodes)
	assert.Equal(t, 1, f.cache.ClearCalls)
}

func TestCompleteOAuth_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"missing code", `{"state":"s1"}`, nil, http.StatusBadRequest},
		{"state mismatch", `{"code":"c1","state":"other"}`, services.ErrOAuthState, http.StatusBadRequest},
		{"exchange failed", `{"code":"c1","state":"s1"}`, &models.RemoteCallError{Platform: models.PlatformYouTube, StatusCode: 400}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(storage.NewMemoryStore())
			f.yt.OAuthErr = tt.err

			rr := do(f.ac.CompleteOAuth, http.MethodPost, "/oauth/callback?p=youtube", tt.body)

			assert.Equal(t, tt.status, rr.Code)
			assert.Empty(t, f.yt.OAuthCodes)
			assert.Zero(t, f.cache.ClearCalls)
		})
	}
}
