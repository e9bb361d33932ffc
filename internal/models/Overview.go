package models

type OverviewTotals struct {
	Followers  int64 `json:"followers"`
	Views      int64 `json:"views"`
	Content    int64 `json:"content"`
	Engagement int64 `json:"engagement"`
}

// AudienceShare is one slice of the audience pie.
type AudienceShare struct {
	Platform Platform `json:"platform"`
	Name     string   `json:"name"`
	Value    int64    `json:"value"`
	Color    string   `json:"color"`
}

// Overview merges the connected platforms. Growth and Engagement share one label set.
type Overview struct {
	Window     TimeWindow           `json:"window"`
	Platforms  []Platform           `json:"platforms"`
	Sources    map[Platform]Source  `json:"sources"`
	Totals     OverviewTotals       `json:"totals"`
	Audience   []AudienceShare      `json:"audience"`
	Growth     []MultiPlatformPoint `json:"growth"`
	Engagement []MultiPlatformPoint `json:"engagement"`
}
