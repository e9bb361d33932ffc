package clients

import (
	"context"
	"creatorstats/internal/models"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"golang.org/x/oauth2"
)

const YouTubeAPIBase = "https://www.googleapis.com/youtube/v3"

const (
	youTubeReadonlyScope = "https://www.googleapis.com/auth/youtube.readonly"
	// googleTokenLeeway renews access tokens this long before they lapse.
	googleTokenLeeway = 5 * time.Minute
)

type YouTubeClient struct {
	baseURL    string
	httpClient *http.Client
	oauth      OAuthApp
}

func NewYouTubeClient(baseURL string, httpClient *http.Client) *YouTubeClient {
	if baseURL == "" {
		baseURL = YouTubeAPIBase
	}
	return &YouTubeClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithOAuth enables sign-in with a Google account.
func (c *YouTubeClient) WithOAuth(app OAuthApp) *YouTubeClient {
	c.oauth = app
	return c
}

type ytChannelResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title     string `json:"title"`
			CustomURL string `json:"customUrl"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount       string `json:"viewCount"`
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			PublishedAt time.Time `json:"publishedAt"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideo struct {
	ID         string `json:"id"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

type ytVideosResponse struct {
	Items []ytVideo `json:"items"`
}

func (c *YouTubeClient) Platform() models.Platform { return models.PlatformYouTube }

func (c *YouTubeClient) Missing(cfg models.YouTubeConfig) []string {
	if cfg.UsesOAuth() {
		return nil
	}
	var missing []string
	if cfg.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if cfg.ChannelID == "" {
		missing = append(missing, "channelId")
	}
	return missing
}

func (c *YouTubeClient) Simulated(_ models.YouTubeConfig) bool { return false }

// buildURL signs the request with the API key unless the account is signed in with OAuth.
func (c *YouTubeClient) buildURL(endpoint string, params url.Values, cfg models.YouTubeConfig) string {
	if !cfg.UsesOAuth() {
		params.Set("key", cfg.APIKey)
	}
	return c.baseURL + "/" + endpoint + "?" + params.Encode()
}

// client returns the HTTP client for cfg: plain for API keys, bearer-authenticated for OAuth.
func (c *YouTubeClient) client(ctx context.Context, cfg models.YouTubeConfig) *http.Client {
	if !cfg.UsesOAuth() {
		return c.httpClient
	}
	return bearerClient(ctx, c.httpClient, cfg.AccessToken)
}

func (c *YouTubeClient) channelURL(cfg models.YouTubeConfig) string {
	params := url.Values{"part": {"statistics,snippet"}}
	if cfg.UsesOAuth() {
		params.Set("mine", "true")
	} else {
		params.Set("id", cfg.ChannelID)
	}
	return c.buildURL("channels", params, cfg)
}

func (c *YouTubeClient) FetchStats(ctx context.Context, cfg models.YouTubeConfig, gate Gate) (models.StatsSnapshot, error) {
	var data ytChannelResponse
	if err := getJSON(ctx, c.client(ctx, cfg), c.channelURL(cfg), gate, &data); err != nil {
		return models.StatsSnapshot{}, err
	}
	if len(data.Items) == 0 {
		return models.StatsSnapshot{}, fmt.Errorf("channel %s: %w", cfg.ChannelID, ErrNotFound)
	}

	ch := data.Items[0]
	return models.StatsSnapshot{
		Platform:      models.PlatformYouTube,
		ID:            ch.ID,
		DisplayName:   ch.Snippet.Title,
		ProfileURL:    "https://www.youtube.com/channel/" + ch.ID,
		FollowerCount: cast.ToInt64(ch.Statistics.SubscriberCount),
		ViewCount:     cast.ToInt64(ch.Statistics.ViewCount),
		ContentCount:  cast.ToInt64(ch.Statistics.VideoCount),
	}, nil
}

// FetchRecentItems lists the newest videos and then, when the gate still allows it,
// loads their statistics. Without the second request the videos come back with zero counts.
func (c *YouTubeClient) FetchRecentItems(ctx context.Context, cfg models.YouTubeConfig, limit int, gate Gate) ([]models.ContentItem, error) {
	hc := c.client(ctx, cfg)
	params := url.Values{
		"part":       {"snippet"},
		"order":      {"date"},
		"maxResults": {strconv.Itoa(limit)},
		"type":       {"video"},
	}
	if cfg.UsesOAuth() {
		params.Set("forMine", "true")
	} else {
		params.Set("channelId", cfg.ChannelID)
	}
	var search ytSearchResponse
	if err := getJSON(ctx, hc, c.buildURL("search", params, cfg), gate, &search); err != nil {
		return nil, err
	}

	items := make([]models.ContentItem, 0, len(search.Items))
	for _, it := range search.Items {
		items = append(items, models.ContentItem{
			ID:          it.ID.VideoID,
			Title:       it.Snippet.Title,
			PublishedAt: it.Snippet.PublishedAt,
			Thumbnail:   it.Snippet.Thumbnails.Medium.URL,
			Duration:    "PT0S",
			Permalink:   "https://www.youtube.com/watch?v=" + it.ID.VideoID,
		})
	}
	if len(items) == 0 || !gate.Allow() {
		return items, nil
	}

	var stats ytVideosResponse
	ids := lo.Map(items, func(it models.ContentItem, _ int) string { return it.ID })
	statsURL := c.buildURL("videos", url.Values{
		"part": {"statistics,contentDetails"},
		"id":   {strings.Join(ids, ",")},
	}, cfg)
	if err := getJSON(ctx, hc, statsURL, gate, &stats); err != nil {
		return nil, err
	}

	byID := lo.KeyBy(stats.Items, func(v ytVideo) string { return v.ID })
	for i := range items {
		s, ok := byID[items[i].ID]
		if !ok {
			continue
		}
		items[i].ViewCount = cast.ToInt64(s.Statistics.ViewCount)
		items[i].LikeCount = cast.ToInt64(s.Statistics.LikeCount)
		items[i].CommentCount = cast.ToInt64(s.Statistics.CommentCount)
		items[i].Duration = s.ContentDetails.Duration
	}
	return items, nil
}

func (c *YouTubeClient) Probe(ctx context.Context, cfg models.YouTubeConfig) (int, error) {
	return probe(ctx, c.client(ctx, cfg), c.channelURL(cfg))
}

func (c *YouTubeClient) OAuthApp() OAuthApp { return c.oauth }

func (c *YouTubeClient) oauthConfig() *oauth2.Config {
	return c.oauth.config(googleEndpoint, youTubeReadonlyScope)
}

// AuthURL asks for offline access so Google issues a refresh token.
func (c *YouTubeClient) AuthURL(state string) string {
	return c.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (c *YouTubeClient) Exchange(ctx context.Context, cfg models.YouTubeConfig, code string, _ time.Time) (models.YouTubeConfig, error) {
	tok, err := c.oauthConfig().Exchange(oauthContext(ctx, c.httpClient), code)
	if err != nil {
		return cfg, tokenError(err)
	}
	return withGoogleToken(cfg, tok), nil
}

func (c *YouTubeClient) Refresh(ctx context.Context, cfg models.YouTubeConfig, now time.Time) (models.YouTubeConfig, bool, error) {
	if cfg.RefreshToken == "" || cfg.ExpiresAt == 0 || len(c.oauth.Missing()) > 0 {
		return cfg, false, nil
	}
	if now.Add(googleTokenLeeway).UnixMilli() < cfg.ExpiresAt {
		return cfg, false, nil
	}
	tok, err := c.oauthConfig().TokenSource(oauthContext(ctx, c.httpClient), &oauth2.Token{RefreshToken: cfg.RefreshToken}).Token()
	if err != nil {
		return cfg, false, tokenError(err)
	}
	return withGoogleToken(cfg, tok), true, nil
}

// withGoogleToken stores tok in cfg. Google omits the refresh token on renewals, so an existing one is kept.
func withGoogleToken(cfg models.YouTubeConfig, tok *oauth2.Token) models.YouTubeConfig {
	cfg.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cfg.RefreshToken = tok.RefreshToken
	}
	cfg.ExpiresAt = 0
	if !tok.Expiry.IsZero() {
		cfg.ExpiresAt = tok.Expiry.UnixMilli()
	}
	return cfg
}

func (c *YouTubeClient) Synthetic(cfg models.YouTubeConfig) (models.StatsSnapshot, []models.ContentItem) {
	return models.StatsSnapshot{
		Platform:      models.PlatformYouTube,
		ID:            lo.CoalesceOrEmpty(cfg.ChannelID, "demo-channel-id"),
		DisplayName:   lo.CoalesceOrEmpty(cfg.ChannelName, "Demo Channel"),
		ProfileURL:    lo.CoalesceOrEmpty(cfg.ChannelURL, "https://www.youtube.com/@demo"),
		FollowerCount: 12400,
		ViewCount:     1800000,
		ContentCount:  89,
	}, demoVideos()
}

func demoVideos() []models.ContentItem {
	return []models.ContentItem{
		{
			ID:           "mock-video-1",
			Title:        "Sample Video Title 1",
			PublishedAt:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			ViewCount:    15000,
			LikeCount:    1200,
			CommentCount: 89,
			Thumbnail:    "https://via.placeholder.com/320x180",
			Duration:     "PT10M30S",
		},
		{
			ID:           "mock-video-2",
			Title:        "Sample Video Title 2",
			PublishedAt:  time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC),
			ViewCount:    22000,
			LikeCount:    1800,
			CommentCount: 156,
			Thumbnail:    "https://via.placeholder.com/320x180",
			Duration:     "PT15M45S",
		},
	}
}
