package clients

import (
	"context"
	"creatorstats/internal/models"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/samber/lo"
)

const ThreadsAPIBase = "https://graph.threads.net/v1.0"

// ThreadsClient calls the Threads Graph API when an access token is configured.
// Without a token it derives stable demo figures from the username.
type ThreadsClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewThreadsClient(baseURL string, httpClient *http.Client) *ThreadsClient {
	if baseURL == "" {
		baseURL = ThreadsAPIBase
	}
	return &ThreadsClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type thInsightsResponse struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value int64 `json:"value"`
		} `json:"values"`
		TotalValue *struct {
			Value int64 `json:"value"`
		} `json:"total_value"`
	} `json:"data"`
}

type thPostsResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Permalink string `json:"permalink"`
		Timestamp string `json:"timestamp"`
	} `json:"data"`
}

func (c *ThreadsClient) Platform() models.Platform { return models.PlatformThreads }

func (c *ThreadsClient) Missing(cfg models.ThreadsConfig) []string {
	if cfg.Username == "" {
		return []string{"username"}
	}
	return nil
}

func (c *ThreadsClient) Simulated(cfg models.ThreadsConfig) bool {
	return cfg.AccessToken == ""
}

func (c *ThreadsClient) insightsURL(cfg models.ThreadsConfig) string {
	params := url.Values{
		"metric":       {"followers_count,likes,replies,reposts,views"},
		"access_token": {cfg.AccessToken},
	}
	return c.baseURL + "/me/threads_insights?" + params.Encode()
}

func (c *ThreadsClient) FetchStats(ctx context.Context, cfg models.ThreadsConfig, gate Gate) (models.StatsSnapshot, error) {
	if c.Simulated(cfg) {
		snap, _ := c.Synthetic(cfg)
		return snap, nil
	}

	var resp thInsightsResponse
	if err := getJSON(ctx, c.httpClient, c.insightsURL(cfg), gate, &resp); err != nil {
		return models.StatsSnapshot{}, err
	}

	metrics := make(map[string]int64, len(resp.Data))
	for _, m := range resp.Data {
		if m.TotalValue != nil {
			metrics[m.Name] = m.TotalValue.Value
			continue
		}
		for _, v := range m.Values {
			metrics[m.Name] += v.Value
		}
	}

	return models.StatsSnapshot{
		Platform:        models.PlatformThreads,
		ID:              lo.CoalesceOrEmpty(cfg.UserID, cfg.Username),
		DisplayName:     displayName(cfg.Username),
		ProfileURL:      "https://www.threads.net/@" + cfg.Username,
		FollowerCount:   metrics["followers_count"],
		ViewCount:       metrics["views"],
		EngagementCount: metrics["likes"] + metrics["replies"] + metrics["reposts"],
	}, nil
}

func (c *ThreadsClient) FetchRecentItems(ctx context.Context, cfg models.ThreadsConfig, limit int, gate Gate) ([]models.ContentItem, error) {
	if c.Simulated(cfg) {
		return lo.Slice(demoPosts(), 0, limit), nil
	}

	var resp thPostsResponse
	params := url.Values{
		"fields":       {"id,text,permalink,timestamp"},
		"limit":        {strconv.Itoa(limit)},
		"access_token": {cfg.AccessToken},
	}
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/me/threads?"+params.Encode(), gate, &resp); err != nil {
		return nil, err
	}

	items := make([]models.ContentItem, 0, len(resp.Data))
	for _, p := range resp.Data {
		published, _ := time.Parse(instagramTimeLayout, p.Timestamp)
		items = append(items, models.ContentItem{
			ID:          p.ID,
			Title:       p.Text,
			PublishedAt: published,
			Permalink:   p.Permalink,
		})
	}
	return items, nil
}

// Probe reports 200 for simulated accounts since nothing upstream can be exhausted.
func (c *ThreadsClient) Probe(ctx context.Context, cfg models.ThreadsConfig) (int, error) {
	if c.Simulated(cfg) {
		return http.StatusOK, nil
	}
	return probe(ctx, c.httpClient, c.insightsURL(cfg))
}

func (c *ThreadsClient) Synthetic(cfg models.ThreadsConfig) (models.StatsSnapshot, []models.ContentItem) {
	if cfg.Username == "" {
		return models.StatsSnapshot{
			Platform:        models.PlatformThreads,
			ID:              "demo_user",
			DisplayName:     "Demo User",
			ProfileURL:      "https://www.threads.net/@demo_user",
			FollowerCount:   48500,
			ContentCount:    156,
			EngagementCount: 125000 + 8900 + 3400,
		}, demoPosts()
	}

	h := int64(usernameHash(cfg.Username))
	return models.StatsSnapshot{
		Platform:        models.PlatformThreads,
		ID:              lo.CoalesceOrEmpty(cfg.UserID, cfg.Username),
		DisplayName:     displayName(cfg.Username),
		ProfileURL:      "https://www.threads.net/@" + cfg.Username,
		FollowerCount:   48500 + h%10000,
		ContentCount:    156 + h%50,
		EngagementCount: (125000 + h%25000) + (8900 + h%2000) + (3400 + h%1000),
	}, demoPosts()
}

// usernameHash is the 32-bit string hash (h*31 + c over UTF-16 code units) that
// seeds the demo figures. Remainders keep the sign of the hash.
func usernameHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	return h
}

func displayName(username string) string {
	if username == "" {
		return ""
	}
	r := []rune(username)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func demoPosts() []models.ContentItem {
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	return []models.ContentItem{
		{ID: "1", Title: "Just launched my new project! Excited to share what I've been working on. #tech #launch", PublishedAt: base.Add(-2 * time.Hour), LikeCount: 1240, CommentCount: 89, ShareCount: 156},
		{ID: "2", Title: "The future of social media is here. Threads is changing how we connect online. What do you think?", PublishedAt: base.Add(-6 * time.Hour), LikeCount: 890, CommentCount: 67, ShareCount: 234},
		{ID: "3", Title: "Reposted by @tech_insider", PublishedAt: base.Add(-12 * time.Hour), LikeCount: 567, CommentCount: 23, ShareCount: 89},
		{ID: "4", Title: "Building in public is the best way to grow. Sharing my journey, wins, and lessons learned.", PublishedAt: base.Add(-24 * time.Hour), LikeCount: 2100, CommentCount: 145, ShareCount: 312},
		{ID: "5", Title: "Threads vs Twitter - the battle for microblogging supremacy continues. Thoughts?", PublishedAt: base.Add(-36 * time.Hour), LikeCount: 1567, CommentCount: 234, ShareCount: 445},
	}
}
