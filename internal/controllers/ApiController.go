package controllers

import (
	"creatorstats/internal/clients"
	"creatorstats/internal/models"
	"creatorstats/internal/providers"
	"creatorstats/internal/services"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const (
	maxRequestBodySize = 1 << 20 // 1 MB
	maxItemsLimit      = 50
	defaultPeriodDays  = 30
	defaultMonths      = 6
)

type ApiController struct {
	logger     providers.Logger
	registry   *services.Registry
	aggregator services.AggregatorInterface
	cache      providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, registry *services.Registry, aggregator services.AggregatorInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:     logger,
		registry:   registry,
		aggregator: aggregator,
		cache:      cache,
	}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
	Blocked bool     `json:"blocked,omitempty"`
}

type collectResponse struct {
	Record models.DailyStatRecord `json:"record"`
	Added  bool                   `json:"added"`
}

type shouldCollectResponse struct {
	ShouldCollect  bool      `json:"shouldCollect"`
	LastCollection time.Time `json:"lastCollection"`
}

// configResponse never carries secrets in the clear; HasAPIKey tells whether one is stored.
type configResponse struct {
	Platform  models.Platform      `json:"platform"`
	Connected bool                 `json:"connected"`
	Simulated bool                 `json:"simulated"`
	HasAPIKey bool                 `json:"hasApiKey"`
	Config    models.ServiceConfig `json:"config"`
}

type oauthURLResponse struct {
	URL string `json:"url"`
}

type oauthCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// writeError maps domain errors to status codes. Anything unrecognised is a storage failure.
func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *models.ConfigurationError
	var rce *models.RemoteCallError
	switch {
	case errors.As(err, &ce):
		writeJSON(w, http.StatusPreconditionFailed, errorResponse{Error: err.Error(), Missing: ce.Missing})
	case errors.As(err, &rce):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Blocked: rce.Blocked})
	case errors.Is(err, clients.ErrOAuthUnsupported), errors.Is(err, services.ErrOAuthState):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// platformService resolves ?p=, defaulting to YouTube. It writes 400 for unknown platforms.
func (ac *ApiController) platformService(w http.ResponseWriter, r *http.Request) (*services.PlatformService, bool) {
	name := r.URL.Query().Get("p")
	if name == "" {
		name = string(models.PlatformYouTube)
	}
	p, err := models.ParsePlatform(name)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}
	svc, ok := ac.registry.Get(p)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}
	return svc, true
}

func getWindow(r *http.Request) models.TimeWindow {
	return models.ParseTimeWindow(r.URL.Query().Get("w"))
}

// positiveParam reads a positive integer query parameter or returns def.
func positiveParam(r *http.Request, name string, def int) int {
	v := cast.ToInt(r.URL.Query().Get(name))
	if v <= 0 {
		return def
	}
	return v
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc.Fetcher.GetSnapshot(r.Context()))
}

func (ac *ApiController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	window := getWindow(r)
	ac.serveFromCacheOrCompute(w, r, "analytics:"+string(svc.Platform())+":"+string(window), func() (any, error) {
		return svc.GetAnalytics(r.Context(), window), nil
	})
}

func (ac *ApiController) GetStatus(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc.Fetcher.GetAPICallStatus(r.Context()))
}

func (ac *ApiController) GetItems(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	limit := min(positiveParam(r, "limit", services.RecentItemsLimit), maxItemsLimit)
	writeJSON(w, http.StatusOK, svc.Fetcher.GetRecentItems(r.Context(), limit))
}

func (ac *ApiController) Collect(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	rec, added, err := svc.Collector.CollectDailyData(r.Context())
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	if added {
		ac.cache.Clear()
	}
	writeJSON(w, http.StatusOK, collectResponse{Record: rec, Added: added})
}

func (ac *ApiController) ShouldCollect(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	last, err := svc.Collector.LastCollection()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shouldCollectResponse{
		ShouldCollect:  svc.Collector.ShouldCollectToday(),
		LastCollection: last,
	})
}

func (ac *ApiController) GetHistory(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	ac.serveFromCacheOrCompute(w, r, "history:"+string(svc.Platform()), func() (any, error) {
		return svc.Collector.GetHistoricalData()
	})
}

func (ac *ApiController) GetHistoryPeriod(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	days := positiveParam(r, "days", defaultPeriodDays)
	ac.serveFromCacheOrCompute(w, r, "period:"+string(svc.Platform())+":"+strconv.Itoa(days), func() (any, error) {
		return svc.Collector.GetDataForPeriod(days)
	})
}

func (ac *ApiController) GetHistoryMonthly(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	months := positiveParam(r, "months", defaultMonths)
	ac.serveFromCacheOrCompute(w, r, "monthly:"+string(svc.Platform())+":"+strconv.Itoa(months), func() (any, error) {
		return svc.Collector.GetMonthlyData(months)
	})
}

func (ac *ApiController) ClearHistory(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	if err := svc.Collector.ClearHistoricalData(); err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetConfig(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	cfg, err := svc.Fetcher.ServiceConfig()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	res := configResponse{
		Platform:  svc.Platform(),
		Connected: svc.Fetcher.Connected(),
		Simulated: svc.Fetcher.Simulated(),
	}
	if cfg != nil {
		res.HasAPIKey = cfg.HasSecret()
		res.Config = cfg.Redacted()
	}
	writeJSON(w, http.StatusOK, res)
}

func (ac *ApiController) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := svc.Fetcher.DecodeConfig(raw); err != nil {
		if errors.Is(err, services.ErrInvalidConfig) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		ac.writeError(w, r, err)
		return
	}
	ac.cache.Clear()
	ac.logger.Infof(providers.TypePost, "%s: credentials updated", svc.Platform())
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) Disconnect(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	if err := svc.Fetcher.Disconnect(); err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.cache.Clear()
	ac.logger.Infof(providers.TypePost, "%s: disconnected", svc.Platform())
	w.WriteHeader(http.StatusNoContent)
}

// GetOAuthURL starts a sign-in and returns the consent page URL.
func (ac *ApiController) GetOAuthURL(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	authURL, err := svc.Fetcher.AuthURL()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, oauthURLResponse{URL: authURL})
}

// CompleteOAuth receives the code and state the platform redirected back with.
func (ac *ApiController) CompleteOAuth(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req oauthCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := svc.Fetcher.CompleteOAuth(r.Context(), req.Code, req.State); err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.cache.Clear()
	ac.logger.Infof(providers.TypePost, "%s: signed in", svc.Platform())
	w.WriteHeader(http.StatusNoContent)
}

// CacheDemoData stores the platform's synthetic snapshot as today's cache.
func (ac *ApiController) CacheDemoData(w http.ResponseWriter, r *http.Request) {
	svc, ok := ac.platformService(w, r)
	if !ok {
		return
	}
	if err := svc.Fetcher.CacheDemoDataAsReal(); err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetOverview(w http.ResponseWriter, r *http.Request) {
	window := getWindow(r)
	ac.serveFromCacheOrCompute(w, r, "overview:"+string(window), func() (any, error) {
		return ac.aggregator.Overview(r.Context(), window), nil
	})
}
