package models

import "time"

// StatsSnapshot is one point-in-time read of a platform's aggregate statistics.
type StatsSnapshot struct {
	Platform        Platform `json:"platform"`
	ID              string   `json:"id"`
	DisplayName     string   `json:"displayName"`
	ProfileURL      string   `json:"profileUrl"`
	FollowerCount   int64    `json:"followerCount"`
	ViewCount       int64    `json:"viewCount"`
	ContentCount    int64    `json:"contentCount"`
	EngagementCount int64    `json:"engagementCount"`
}

// ContentItem is a recent video or post.
type ContentItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	PublishedAt  time.Time `json:"publishedAt"`
	ViewCount    int64     `json:"viewCount"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
	ShareCount   int64     `json:"shareCount"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Permalink    string    `json:"permalink,omitempty"`
}

func (i ContentItem) Engagement() int64 {
	return i.LikeCount + i.CommentCount + i.ShareCount
}

// CachedSnapshot is the single cached copy kept per platform. Writes overwrite it.
type CachedSnapshot struct {
	Stats    *StatsSnapshot `json:"channelStats,omitempty"`
	Items    []ContentItem  `json:"recentVideos,omitempty"`
	CachedAt time.Time      `json:"lastCached"`
}

func (c *CachedSnapshot) HasStats() bool {
	return c != nil && c.Stats != nil
}

func (c *CachedSnapshot) HasItems() bool {
	return c != nil && c.Items != nil
}

// Source tags where served data came from.
type Source string

const (
	SourceFresh     Source = "fresh"
	SourceCached    Source = "cached"
	SourceSynthetic Source = "synthetic"
)

type SnapshotResult struct {
	Snapshot StatsSnapshot `json:"snapshot"`
	Source   Source        `json:"source"`
	CachedAt time.Time     `json:"cachedAt"`
}

func (r SnapshotResult) Age(now time.Time) time.Duration {
	if r.Source != SourceCached || r.CachedAt.IsZero() {
		return 0
	}
	return now.Sub(r.CachedAt)
}

type ItemsResult struct {
	Items  []ContentItem `json:"items"`
	Source Source        `json:"source"`
}

type Analytics struct {
	Snapshot    SnapshotResult `json:"snapshot"`
	RecentItems ItemsResult    `json:"recentItems"`
	Window      TimeWindow     `json:"window"`
	Followers   []ChartBucket  `json:"followers"`
	Views       []ChartBucket  `json:"views"`
}

// CallStatus reports the budget state of one platform without side effects on the budget.
type CallStatus struct {
	Platform            Platform      `json:"platform"`
	DailyCalls          int           `json:"dailyCalls"`
	MaxCalls            int           `json:"maxCalls"`
	RemainingCalls      int           `json:"remainingCalls"`
	LastCall            time.Time     `json:"lastCall"`
	CanMakeCall         bool          `json:"canMakeCall"`
	CooldownRemaining   time.Duration `json:"cooldownRemaining"`
	Source              Source        `json:"source"`
	UsingCachedData     bool          `json:"usingCachedData"`
	UsingDemoData       bool          `json:"usingDemoData"`
	QuotaExceeded       bool          `json:"quotaExceeded"`
	RateLimited         bool          `json:"rateLimited"`
	ActualQuotaExceeded bool          `json:"actualQuotaExceeded"`
	Reason              string        `json:"reason"`
}
