package models

import "fmt"

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformThreads   Platform = "threads"
)

var Platforms = []Platform{PlatformYouTube, PlatformInstagram, PlatformThreads}

func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

func (p Platform) Label() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformInstagram:
		return "Instagram"
	case PlatformThreads:
		return "Threads"
	default:
		return string(p)
	}
}

// Color is the brand color used by the audience chart.
func (p Platform) Color() string {
	switch p {
	case PlatformYouTube:
		return "#FF0000"
	case PlatformInstagram:
		return "#E4405F"
	case PlatformThreads:
		return "#000000"
	default:
		return "#888888"
	}
}

// Store keys. Each one is an independent record; nothing spans two keys.

func (p Platform) ConfigKey() string {
	return string(p) + "Config"
}

func (p Platform) TrackingKey() string {
	return string(p) + "ApiTracking"
}

func (p Platform) CacheKey() string {
	return string(p) + "CachedData"
}

// OAuthStateKey holds the state of the sign-in in progress.
func (p Platform) OAuthStateKey() string {
	return string(p) + "OAuthState"
}

func (p Platform) HistoryKey() string {
	return string(p) + "_historical_data"
}

func (p Platform) CollectionKey() string {
	return string(p) + "_daily_collection"
}
