package models

import "time"

// DailyStatRecord is the per-day record. Date is a local YYYY-MM-DD key.
type DailyStatRecord struct {
	Date            string `json:"date"`
	SubscriberCount int64  `json:"subscriberCount"`
	ViewCount       int64  `json:"viewCount"`
	VideoCount      int64  `json:"videoCount"`
	DisplayName     string `json:"channelName"`
}

// NewDailyStatRecord maps a snapshot onto the daily record. Platforms without a view
// counter store their engagement total in the view column.
func NewDailyStatRecord(date string, s StatsSnapshot) DailyStatRecord {
	views := s.ViewCount
	if views == 0 {
		views = s.EngagementCount
	}
	return DailyStatRecord{
		Date:            date,
		SubscriberCount: s.FollowerCount,
		ViewCount:       views,
		VideoCount:      s.ContentCount,
		DisplayName:     s.DisplayName,
	}
}

type HistoricalSeries struct {
	DailyStats  []DailyStatRecord `json:"dailyStats"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

func (h *HistoricalSeries) Has(date string) bool {
	for _, r := range h.DailyStats {
		if r.Date == date {
			return true
		}
	}
	return false
}

// Append adds rec unless a record for the same date already exists.
func (h *HistoricalSeries) Append(rec DailyStatRecord, now time.Time) bool {
	if h.Has(rec.Date) {
		return false
	}
	h.DailyStats = append(h.DailyStats, rec)
	h.LastUpdated = now
	return true
}

// MonthlyAggregate holds the per-month average of every numeric field.
type MonthlyAggregate struct {
	Month       string `json:"month"`
	Key         string `json:"key"`
	Subscribers int64  `json:"subscribers"`
	Views       int64  `json:"views"`
	Videos      int64  `json:"videos"`
	Count       int    `json:"count"`
}
