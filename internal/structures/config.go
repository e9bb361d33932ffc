package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Method  string
	Url     string
	Handler http.Handler
}

// Pattern is the ServeMux pattern of the route, e.g. "GET /history".
func (r Route) Pattern() string {
	return r.Method + " " + r.Url
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// StorageConfig selects the key-value backend. Path is ignored by the memory driver.
type StorageConfig struct {
	Driver string `yaml:"driver" validate:"required|in:memory,file,sqlite"`
	Path   string `yaml:"path"`
}

type QuotaConfig struct {
	DailyMax        int           `yaml:"dailyMax" validate:"required|min:1"`
	MinInterval     time.Duration `yaml:"minInterval"`
	ProbeSkipWindow time.Duration `yaml:"probeSkipWindow"`
}

type CollectionConfig struct {
	Enabled       bool          `yaml:"enabled"`
	CheckInterval time.Duration `yaml:"checkInterval"`
}

type YouTubeSettings struct {
	APIKey      string        `yaml:"apiKey"`
	ChannelID   string        `yaml:"channelId"`
	ChannelName string        `yaml:"channelName"`
	ChannelURL  string        `yaml:"channelUrl"`
	BaseURL     string        `yaml:"baseUrl"`
	OAuth       OAuthSettings `yaml:"oauth"`
}

type InstagramSettings struct {
	AccessToken string        `yaml:"accessToken"`
	UserID      string        `yaml:"userId"`
	Username    string        `yaml:"username"`
	BaseURL     string        `yaml:"baseUrl"`
	OAuth       OAuthSettings `yaml:"oauth"`
}

// OAuthSettings registers the app used for sign-in. Leaving it empty disables sign-in.
type OAuthSettings struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURI  string `yaml:"redirectUri"`
}

type ThreadsSettings struct {
	Username    string `yaml:"username"`
	UserID      string `yaml:"userId"`
	AccessToken string `yaml:"accessToken"`
	BaseURL     string `yaml:"baseUrl"`
}

type PlatformsConfig struct {
	YouTube   YouTubeSettings   `yaml:"youtube"`
	Instagram InstagramSettings `yaml:"instagram"`
	Threads   ThreadsSettings   `yaml:"threads"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName    string
	Debug      bool
	Path       string
	Location   string           `yaml:"location"`
	WebServer  Server           `yaml:"webServer"`
	Logger     LoggerConfig     `yaml:"logger"`
	Storage    StorageConfig    `yaml:"storage"`
	Quota      QuotaConfig      `yaml:"quota"`
	Collection CollectionConfig `yaml:"collection"`
	Platforms  PlatformsConfig  `yaml:"platforms"`
	Cache      CacheConfig      `yaml:"cache"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}
