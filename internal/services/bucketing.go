package services

import (
	"creatorstats/internal/models"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
)

// Field selects the numeric column of a daily record that a chart projects.
type Field string

const (
	FieldSubscribers Field = "subscribers"
	FieldViews       Field = "views"
	FieldVideos      Field = "videos"
)

// ParseField falls back to subscribers for unknown input.
func ParseField(s string) Field {
	switch Field(s) {
	case FieldViews, FieldVideos:
		return Field(s)
	default:
		return FieldSubscribers
	}
}

func (f Field) Value(r models.DailyStatRecord) int64 {
	switch f {
	case FieldViews:
		return r.ViewCount
	case FieldVideos:
		return r.VideoCount
	default:
		return r.SubscriberCount
	}
}

// bucketRange covers the date keys in [from, to).
type bucketRange struct {
	label string
	key   string
	from  string
	to    string
}

// BuildSeries reshapes history into the fixed bucket layout of window. A bucket
// holding at least one record gets the rounded average of those records; every
// other bucket gets currentValue scaled by the window's progression factor and
// is flagged synthetic.
func BuildSeries(records []models.DailyStatRecord, window models.TimeWindow, currentValue float64, field Field, now time.Time, loc *time.Location) []models.ChartBucket {
	if loc == nil {
		loc = time.Local
	}
	ranges := bucketRanges(window, now, loc)
	factors := window.ProgressionFactors()

	buckets := make([]models.ChartBucket, len(ranges))
	for i, r := range ranges {
		inBucket := lo.Filter(records, func(rec models.DailyStatRecord, _ int) bool {
			return rec.Date >= r.from && rec.Date < r.to
		})

		b := models.ChartBucket{Label: r.label, Key: r.key}
		if len(inBucket) > 0 {
			b.Value = float64(averageOf(inBucket, field))
		} else {
			b.Value = math.Round(currentValue * factors[i])
			b.Synthetic = true
		}
		buckets[i] = b
	}
	return buckets
}

func bucketRanges(window models.TimeWindow, now time.Time, loc *time.Location) []bucketRange {
	n := window.BucketCount()
	ranges := make([]bucketRange, 0, n)
	day := models.StartOfDay(now, loc)

	switch window {
	case models.TimeWindow7d:
		for i := range n {
			d := day.AddDate(0, 0, -(n - 1 - i))
			ranges = append(ranges, bucketRange{
				label: d.Format("Jan 2"),
				key:   models.DateKey(d, loc),
				from:  models.DateKey(d, loc),
				to:    models.DateKey(d.AddDate(0, 0, 1), loc),
			})
		}

	case models.TimeWindow30d:
		weekStart := day.AddDate(0, 0, -int(day.Weekday()))
		for i := range n {
			ws := weekStart.AddDate(0, 0, -7*(n-1-i))
			ranges = append(ranges, bucketRange{
				label: fmt.Sprintf("Week %d", i+1),
				key:   models.DateKey(ws, loc),
				from:  models.DateKey(ws, loc),
				to:    models.DateKey(ws.AddDate(0, 0, 7), loc),
			})
		}

	case models.TimeWindow1y:
		month := models.StartOfMonth(now, loc)
		quarterStart := time.Date(month.Year(), month.Month()-(month.Month()-1)%3, 1, 0, 0, 0, 0, loc)
		for i := range n {
			qs := quarterStart.AddDate(0, -3*(n-1-i), 0)
			q := int(qs.Month()-1)/3 + 1
			ranges = append(ranges, bucketRange{
				label: fmt.Sprintf("Q%d", q),
				key:   fmt.Sprintf("%d-Q%d", qs.Year(), q),
				from:  models.DateKey(qs, loc),
				to:    models.DateKey(qs.AddDate(0, 3, 0), loc),
			})
		}

	default: // 3m, 6m
		month := models.StartOfMonth(now, loc)
		for i := range n {
			ms := month.AddDate(0, -(n - 1 - i), 0)
			ranges = append(ranges, bucketRange{
				label: ms.Format("Jan"),
				key:   ms.Format("2006-01"),
				from:  models.DateKey(ms, loc),
				to:    models.DateKey(ms.AddDate(0, 1, 0), loc),
			})
		}
	}
	return ranges
}
