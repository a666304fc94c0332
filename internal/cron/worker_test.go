package cron

import (
	"testing"
	"time"
)

func TestNextRunTime(t *testing.T) {
	base := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	if got := nextRunTime("300", base); !got.Equal(base.Add(5 * time.Minute)) {
		t.Errorf("integer seconds: got %v", got)
	}

	// Hourly cron expression fires at the top of the next hour.
	if got := nextRunTime("0 * * * *", base); !got.Equal(time.Date(2024, 6, 15, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("cron expression: got %v", got)
	}

	// Garbage settings fall back to an hour.
	if got := nextRunTime("whenever", base); !got.Equal(base.Add(time.Hour)) {
		t.Errorf("fallback: got %v", got)
	}
}
