package models

// TimeWindow is the chart range selected in the dashboard.
type TimeWindow string

const (
	TimeWindow7d  TimeWindow = "7d"
	TimeWindow30d TimeWindow = "30d"
	TimeWindow3m  TimeWindow = "3m"
	TimeWindow6m  TimeWindow = "6m"
	TimeWindow1y  TimeWindow = "1y"
)

var ValidTimeWindows = []TimeWindow{
	TimeWindow7d,
	TimeWindow30d,
	TimeWindow3m,
	TimeWindow6m,
	TimeWindow1y,
}

// ParseTimeWindow falls back to 6 months for unknown input.
func ParseTimeWindow(s string) TimeWindow {
	for _, tw := range ValidTimeWindows {
		if string(tw) == s {
			return tw
		}
	}
	return TimeWindow6m
}

func (tw TimeWindow) Label() string {
	switch tw {
	case TimeWindow7d:
		return "7 Days"
	case TimeWindow30d:
		return "30 Days"
	case TimeWindow3m:
		return "3 Months"
	case TimeWindow1y:
		return "1 Year"
	default:
		return "6 Months"
	}
}

// BucketCount is the fixed number of chart points for the window.
func (tw TimeWindow) BucketCount() int {
	return len(tw.ProgressionFactors())
}

// ProgressionFactors scale the anchor value for synthetic buckets, oldest first.
// The last factor is always 1.0 so the newest bucket equals the anchor.
func (tw TimeWindow) ProgressionFactors() []float64 {
	switch tw {
	case TimeWindow7d:
		return []float64{0.85, 0.875, 0.9, 0.925, 0.95, 0.975, 1.0}
	case TimeWindow30d:
		return []float64{0.80, 0.85, 0.90, 0.95, 1.0}
	case TimeWindow3m:
		return []float64{0.8, 0.9, 1.0}
	case TimeWindow1y:
		return []float64{0.70, 0.80, 0.90, 1.0}
	default:
		return []float64{0.70, 0.80, 0.85, 0.90, 0.95, 1.00}
	}
}

func NextTimeWindow(current TimeWindow) TimeWindow {
	for i, tw := range ValidTimeWindows {
		if tw == current {
			return ValidTimeWindows[(i+1)%len(ValidTimeWindows)]
		}
	}
	return ValidTimeWindows[0]
}

// ChartBucket is one labelled point of a chart series. Never persisted.
type ChartBucket struct {
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Key       string  `json:"key"`
	Synthetic bool    `json:"synthetic"`
}

// MultiPlatformPoint is one label with a value per platform.
type MultiPlatformPoint struct {
	Label  string               `json:"label"`
	Key    string               `json:"key"`
	Values map[Platform]float64 `json:"values"`
}
