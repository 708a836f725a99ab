// config/reminders.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Offset is a named duration before the scheduled time at which a reminder fires.
// The ID is the literal token from configuration (e.g. "24h") and is what gets
// recorded on the visit, so renaming an offset resets its dedup history.
type Offset struct {
	ID     string
	Before time.Duration
}

// ReminderSettings holds everything the reminder cycle reads from the environment.
type ReminderSettings struct {
	TriggerSecret   string
	Offsets         []Offset
	GracePeriod     time.Duration
	DispatchWorkers int
	SendTimeout     time.Duration
	CycleDeadline   time.Duration
}

// LoadReminderSettings reads REMINDER_* environment variables, falling back to
// defaults: offsets 24h,1h; grace 1h; 8 workers; 10s per send; 2m per cycle.
func LoadReminderSettings() (ReminderSettings, error) {
	s := ReminderSettings{
		TriggerSecret:   os.Getenv("REMINDER_TRIGGER_SECRET"),
		GracePeriod:     time.Hour,
		DispatchWorkers: 8,
		SendTimeout:     10 * time.Second,
		CycleDeadline:   2 * time.Minute,
	}

	raw := os.Getenv("REMINDER_OFFSETS")
	if raw == "" {
		raw = "24h,1h"
	}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		d, err := time.ParseDuration(token)
		if err != nil || d <= 0 {
			return s, fmt.Errorf("invalid reminder offset %q", token)
		}
		s.Offsets = append(s.Offsets, Offset{ID: token, Before: d})
	}
	if len(s.Offsets) == 0 {
		return s, fmt.Errorf("no reminder offsets configured")
	}

	if env := os.Getenv("REMINDER_GRACE_PERIOD"); env != "" {
		d, err := time.ParseDuration(env)
		if err != nil || d < 0 {
			return s, fmt.Errorf("invalid grace period %q", env)
		}
		s.GracePeriod = d
	}
	if env := os.Getenv("REMINDER_DISPATCH_WORKERS"); env != "" {
		n, err := strconv.Atoi(env)
		if err != nil || n < 1 {
			return s, fmt.Errorf("invalid dispatch worker count %q", env)
		}
		s.DispatchWorkers = n
	}
	if env := os.Getenv("REMINDER_SEND_TIMEOUT"); env != "" {
		d, err := time.ParseDuration(env)
		if err != nil || d <= 0 {
			return s, fmt.Errorf("invalid send timeout %q", env)
		}
		s.SendTimeout = d
	}
	if env := os.Getenv("REMINDER_CYCLE_DEADLINE"); env != "" {
		d, err := time.ParseDuration(env)
		if err != nil || d <= 0 {
			return s, fmt.Errorf("invalid cycle deadline %q", env)
		}
		s.CycleDeadline = d
	}

	return s, nil
}

// MaxOffset returns the largest configured offset duration.
func (s ReminderSettings) MaxOffset() time.Duration {
	var max time.Duration
	for _, o := range s.Offsets {
		if o.Before > max {
			max = o.Before
		}
	}
	return max
}
