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
)

const InstagramAPIBase = "https://graph.instagram.com/v12.0"

// instagramTimeLayout is the Graph API timestamp format, e.g. 2024-01-15T10:00:00+0000.
const instagramTimeLayout = "2006-01-02T15:04:05-0700"

const (
	instagramScope = "user_profile,user_media"
	// longLivedTokenRenewal is how close to expiry a long-lived token gets renewed.
	longLivedTokenRenewal = 7 * 24 * time.Hour
)

type InstagramClient struct {
	baseURL    string
	httpClient *http.Client
	oauth      OAuthApp
}

func NewInstagramClient(baseURL string, httpClient *http.Client) *InstagramClient {
	if baseURL == "" {
		baseURL = InstagramAPIBase
	}
	return &InstagramClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithOAuth enables sign-in with Instagram Basic Display.
func (c *InstagramClient) WithOAuth(app OAuthApp) *InstagramClient {
	c.oauth = app
	return c
}

type igUser struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	AccountType    string `json:"account_type"`
	MediaCount     int64  `json:"media_count"`
	FollowsCount   int64  `json:"follows_count"`
	FollowersCount int64  `json:"followers_count"`
}

type igMedia struct {
	ID            string `json:"id"`
	Caption       string `json:"caption"`
	MediaType     string `json:"media_type"`
	MediaURL      string `json:"media_url"`
	ThumbnailURL  string `json:"thumbnail_url"`
	Permalink     string `json:"permalink"`
	Timestamp     string `json:"timestamp"`
	LikeCount     int64  `json:"like_count"`
	CommentsCount int64  `json:"comments_count"`
}

type igMediaResponse struct {
	Data []igMedia `json:"data"`
}

type igTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *InstagramClient) Platform() models.Platform { return models.PlatformInstagram }

func (c *InstagramClient) Missing(cfg models.InstagramConfig) []string {
	if cfg.AccessToken == "" {
		return []string{"accessToken"}
	}
	return nil
}

func (c *InstagramClient) Simulated(_ models.InstagramConfig) bool { return false }

func (c *InstagramClient) buildURL(endpoint string, params url.Values, token string) string {
	params.Set("access_token", token)
	return c.baseURL + endpoint + "?" + params.Encode()
}

func (c *InstagramClient) profileURL(cfg models.InstagramConfig) string {
	return c.buildURL("/me", url.Values{
		"fields": {"id,username,account_type,media_count,follows_count,followers_count"},
	}, cfg.AccessToken)
}

func (c *InstagramClient) FetchStats(ctx context.Context, cfg models.InstagramConfig, gate Gate) (models.StatsSnapshot, error) {
	var u igUser
	if err := getJSON(ctx, c.httpClient, c.profileURL(cfg), gate, &u); err != nil {
		return models.StatsSnapshot{}, err
	}
	if u.ID == "" {
		return models.StatsSnapshot{}, fmt.Errorf("instagram profile: %w", ErrNotFound)
	}
	return models.StatsSnapshot{
		Platform:      models.PlatformInstagram,
		ID:            u.ID,
		DisplayName:   u.Username,
		ProfileURL:    "https://instagram.com/" + u.Username,
		FollowerCount: u.FollowersCount,
		ContentCount:  u.MediaCount,
	}, nil
}

func (c *InstagramClient) FetchRecentItems(ctx context.Context, cfg models.InstagramConfig, limit int, gate Gate) ([]models.ContentItem, error) {
	var resp igMediaResponse
	mediaURL := c.buildURL("/me/media", url.Values{
		"fields": {"id,caption,media_type,media_url,thumbnail_url,permalink,timestamp,like_count,comments_count"},
		"limit":  {strconv.Itoa(limit)},
	}, cfg.AccessToken)
	if err := getJSON(ctx, c.httpClient, mediaURL, gate, &resp); err != nil {
		return nil, err
	}

	return lo.Map(resp.Data, func(m igMedia, _ int) models.ContentItem {
		published, _ := time.Parse(instagramTimeLayout, m.Timestamp)
		return models.ContentItem{
			ID:           m.ID,
			Title:        m.Caption,
			PublishedAt:  published,
			LikeCount:    m.LikeCount,
			CommentCount: m.CommentsCount,
			Thumbnail:    lo.CoalesceOrEmpty(m.ThumbnailURL, m.MediaURL),
			Permalink:    m.Permalink,
		}
	}), nil
}

func (c *InstagramClient) Probe(ctx context.Context, cfg models.InstagramConfig) (int, error) {
	return probe(ctx, c.httpClient, c.profileURL(cfg))
}

func (c *InstagramClient) OAuthApp() OAuthApp { return c.oauth }

func (c *InstagramClient) AuthURL(state string) string {
	return c.oauth.config(instagramEndpoint, instagramScope).AuthCodeURL(state)
}

// Exchange trades the code for a short-lived token, upgrades it to a long-lived one
// and looks up the account it belongs to.
func (c *InstagramClient) Exchange(ctx context.Context, _ models.InstagramConfig, code string, now time.Time) (models.InstagramConfig, error) {
	tok, err := c.oauth.config(instagramEndpoint, instagramScope).Exchange(oauthContext(ctx, c.httpClient), code)
	if err != nil {
		return models.InstagramConfig{}, tokenError(err)
	}
	cfg := models.InstagramConfig{
		AccessToken: tok.AccessToken,
		UserID:      cast.ToString(tok.Extra("user_id")),
	}

	var long igTokenResponse
	longURL := c.buildURL("/access_token", url.Values{
		"grant_type":    {"ig_exchange_token"},
		"client_secret": {c.oauth.ClientSecret},
	}, cfg.AccessToken)
	if err := getJSON(ctx, c.httpClient, longURL, OpenGate{}, &long); err != nil {
		return models.InstagramConfig{}, fmt.Errorf("long-lived token: %w", err)
	}
	cfg = withInstagramToken(cfg, long, now)

	var u igUser
	if err := getJSON(ctx, c.httpClient, c.buildURL("/me", url.Values{"fields": {"id,username"}}, cfg.AccessToken), OpenGate{}, &u); err != nil {
		return models.InstagramConfig{}, fmt.Errorf("user info: %w", err)
	}
	cfg.UserID = lo.CoalesceOrEmpty(u.ID, cfg.UserID)
	cfg.Username = u.Username
	return cfg, nil
}

// Refresh renews a long-lived token during its last week. Expired tokens cannot be renewed.
func (c *InstagramClient) Refresh(ctx context.Context, cfg models.InstagramConfig, now time.Time) (models.InstagramConfig, bool, error) {
	if cfg.AccessToken == "" || cfg.ExpiresAt == 0 || cfg.ExpiresAt <= now.UnixMilli() {
		return cfg, false, nil
	}
	if now.Add(longLivedTokenRenewal).UnixMilli() < cfg.ExpiresAt {
		return cfg, false, nil
	}
	var tok igTokenResponse
	refreshURL := c.buildURL("/refresh_access_token", url.Values{"grant_type": {"ig_refresh_token"}}, cfg.AccessToken)
	if err := getJSON(ctx, c.httpClient, refreshURL, OpenGate{}, &tok); err != nil {
		return cfg, false, err
	}
	return withInstagramToken(cfg, tok, now), true, nil
}

func withInstagramToken(cfg models.InstagramConfig, tok igTokenResponse, now time.Time) models.InstagramConfig {
	cfg.AccessToken = tok.AccessToken
	cfg.ExpiresAt = 0
	if tok.ExpiresIn > 0 {
		cfg.ExpiresAt = now.Add(time.Duration(tok.ExpiresIn) * time.Second).UnixMilli()
	}
	return cfg
}

func (c *InstagramClient) Synthetic(cfg models.InstagramConfig) (models.StatsSnapshot, []models.ContentItem) {
	username := lo.CoalesceOrEmpty(cfg.Username, "demo_instagram_user")
	return models.StatsSnapshot{
		Platform:      models.PlatformInstagram,
		ID:            lo.CoalesceOrEmpty(cfg.UserID, "demo_user_id"),
		DisplayName:   username,
		ProfileURL:    "https://instagram.com/" + username,
		FollowerCount: 67800,
		ContentCount:  156,
	}, demoMedia()
}

func demoMedia() []models.ContentItem {
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	return []models.ContentItem{
		{
			ID:           "1",
			Title:        "Beautiful sunset at the beach today! #sunset #beach #photography",
			PublishedAt:  base.Add(-2 * time.Hour),
			LikeCount:    1240,
			CommentCount: 89,
			Permalink:    "https://instagram.com/p/demo1",
		},
		{
			ID:           "2",
			Title:        "New project launch! Excited to share what I've been working on #launch #tech #project",
			PublishedAt:  base.Add(-6 * time.Hour),
			LikeCount:    890,
			CommentCount: 67,
			Permalink:    "https://instagram.com/p/demo2",
		},
		{
			ID:           "3",
			Title:        "Behind the scenes of my latest video #bts #content #creator",
			PublishedAt:  base.Add(-12 * time.Hour),
			LikeCount:    1567,
			CommentCount: 234,
			Permalink:    "https://instagram.com/p/demo3",
		},
	}
}
