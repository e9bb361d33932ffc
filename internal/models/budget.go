package models

import "time"

// CallBudgetState tracks the self-imposed daily call budget of one platform.
type CallBudgetState struct {
	CallsMadeToday int       `json:"count"`
	LastCall       time.Time `json:"lastCall"`
	ResetDate      string    `json:"date"`
}

// ForDay returns the state as seen on the calendar day today.
// A state recorded on another day counts as fresh.
func (b CallBudgetState) ForDay(today string) CallBudgetState {
	if b.ResetDate != today {
		return CallBudgetState{ResetDate: today}
	}
	return b
}

func (b CallBudgetState) Remaining(dailyMax int) int {
	return max(0, dailyMax-b.CallsMadeToday)
}

// CooldownRemaining is zero once interval has elapsed since the last attempt.
func (b CallBudgetState) CooldownRemaining(now time.Time, interval time.Duration) time.Duration {
	if b.LastCall.IsZero() {
		return 0
	}
	left := b.LastCall.Add(interval).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (b CallBudgetState) Exhausted(dailyMax int) bool {
	return b.CallsMadeToday >= dailyMax
}

func (b *CallBudgetState) Record(now time.Time, today string) {
	*b = b.ForDay(today)
	b.CallsMadeToday++
	b.LastCall = now
}
