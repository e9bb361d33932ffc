package models

import (
	"strings"
	"time"
)

// ServiceConfig is the per-platform credential record.
type ServiceConfig interface {
	Complete(now time.Time) bool
	// HasSecret reports whether an API key or access token is stored.
	HasSecret() bool
	// Redacted returns a copy safe to hand to clients: secrets keep only their last four characters.
	Redacted() ServiceConfig
}

const visibleSecretChars = 4

// MaskSecret hides all but the last four characters of s.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= visibleSecretChars {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-visibleSecretChars) + s[len(s)-visibleSecretChars:]
}

// YouTubeConfig authenticates either with an API key plus channel id or with an
// OAuth access token, in which case the signed-in user's own channel is read.
type YouTubeConfig struct {
	ChannelID    string `json:"channelId"`
	APIKey       string `json:"apiKey"`
	ChannelName  string `json:"channelName"`
	ChannelURL   string `json:"channelUrl"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	// ExpiresAt is the access token expiry in unix milliseconds.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

func (c YouTubeConfig) Complete(_ time.Time) bool {
	return c.AccessToken != "" || (c.APIKey != "" && c.ChannelID != "")
}

// UsesOAuth reports whether requests carry a bearer token instead of the API key.
func (c YouTubeConfig) UsesOAuth() bool {
	return c.AccessToken != ""
}

func (c YouTubeConfig) HasSecret() bool {
	return c.APIKey != "" || c.AccessToken != ""
}

func (c YouTubeConfig) Redacted() ServiceConfig {
	c.APIKey = MaskSecret(c.APIKey)
	c.AccessToken = MaskSecret(c.AccessToken)
	c.RefreshToken = MaskSecret(c.RefreshToken)
	return c
}

type InstagramConfig struct {
	AccessToken string `json:"accessToken,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Username    string `json:"username,omitempty"`
	// ExpiresAt is a unix millisecond timestamp; zero means the token does not expire.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

func (c InstagramConfig) Complete(now time.Time) bool {
	if c.AccessToken == "" {
		return false
	}
	return c.ExpiresAt == 0 || c.ExpiresAt > now.UnixMilli()
}

func (c InstagramConfig) HasSecret() bool {
	return c.AccessToken != ""
}

func (c InstagramConfig) Redacted() ServiceConfig {
	c.AccessToken = MaskSecret(c.AccessToken)
	return c
}

type ThreadsConfig struct {
	Username    string `json:"username"`
	UserID      string `json:"userId,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

func (c ThreadsConfig) Complete(_ time.Time) bool {
	return c.Username != ""
}

func (c ThreadsConfig) HasSecret() bool {
	return c.AccessToken != ""
}

func (c ThreadsConfig) Redacted() ServiceConfig {
	c.AccessToken = MaskSecret(c.AccessToken)
	return c
}
