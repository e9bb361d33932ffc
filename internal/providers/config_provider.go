package providers

import (
	"creatorstats/internal/models"
	"creatorstats/internal/structures"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const AppName = "CreatorStatsDaemon"

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "./logs")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "./data/creatorstats.db")
	v.SetDefault("quota.dailyMax", 4)
	v.SetDefault("quota.minInterval", 6*time.Hour)
	v.SetDefault("quota.probeSkipWindow", 5*time.Minute)
	v.SetDefault("collection.enabled", true)
	v.SetDefault("collection.checkInterval", time.Hour)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 8)
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("location", "Local")
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.BindEnv("logger.level", "CS_LOG_LEVEL")
	v.BindEnv("storage.driver", "CS_STORAGE_DRIVER")
	v.BindEnv("storage.path", "CS_STORAGE_PATH")
	v.BindEnv("quota.dailyMax", "CS_QUOTA_DAILY_MAX")
	v.BindEnv("quota.minInterval", "CS_QUOTA_MIN_INTERVAL")
	v.BindEnv("platforms.youtube.apiKey", "CS_YOUTUBE_API_KEY")
	v.BindEnv("platforms.youtube.channelId", "CS_YOUTUBE_CHANNEL_ID")
	v.BindEnv("platforms.youtube.oauth.clientSecret", "CS_YOUTUBE_CLIENT_SECRET")
	v.BindEnv("platforms.instagram.accessToken", "CS_INSTAGRAM_ACCESS_TOKEN")
	v.BindEnv("platforms.instagram.oauth.clientSecret", "CS_INSTAGRAM_CLIENT_SECRET")
	v.BindEnv("platforms.threads.username", "CS_THREADS_USERNAME")
	v.BindEnv("platforms.threads.accessToken", "CS_THREADS_ACCESS_TOKEN")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// NewLocationProvider resolves the time zone used for calendar-day keys.
func NewLocationProvider(conf *structures.Config) (*time.Location, error) {
	if conf.Location == "" || conf.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(conf.Location)
	if err != nil {
		return nil, fmt.Errorf("unknown location %q: %w", conf.Location, err)
	}
	return loc, nil
}

func NewClockProvider() models.Clock {
	return models.SystemClock{}
}
