package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const scheduleInterval = time.Minute

// ScheduleManager periodically checks the clock to decide if the screen should be on or off
type ScheduleManager struct {
	screen DisplayPower
	start  time.Time
	end    time.Time

	lastCheck time.Time
	now       func() time.Time
}

// NewScheduleManager keeps the screen on from start until end each day, both given as HH:MM.
// An end earlier than start spans midnight.
func NewScheduleManager(screen DisplayPower, start, end string) (*ScheduleManager, error) {
	if screen == nil {
		return nil, errors.New("no display provided for scheduler")
	}

	startTime, err := time.Parse("15:04", start)
	if err != nil {
		return nil, fmt.Errorf("start time with invalid format %q: %w", start, err)
	}
	endTime, err := time.Parse("15:04", end)
	if err != nil {
		return nil, fmt.Errorf("end time with invalid format %q: %w", end, err)
	}
	if startTime.Equal(endTime) {
		return nil, fmt.Errorf("schedule start and end are both %s", start)
	}

	return &ScheduleManager{
		screen: screen,
		start:  startTime,
		end:    endTime,
		now:    time.Now,
	}, nil
}

// lastOccurrence is the most recent time at or before now with the clock time of hm
func lastOccurrence(now, hm time.Time) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hm.Hour(), hm.Minute(), 0, 0, now.Location())
	if t.After(now) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

func (s *ScheduleManager) checkSchedule(ctx context.Context) {
	now := s.now()
	defer func() { s.lastCheck = now }()

	on := lastOccurrence(now, s.start)
	off := lastOccurrence(now, s.end)
	crossedOn := on.After(s.lastCheck)
	crossedOff := off.After(s.lastCheck)
	if !crossedOn && !crossedOff {
		return
	}

	// when both were crossed since the last check the later one wins
	enabled := crossedOn && (!crossedOff || on.After(off))
	if err := s.screen.SetEnabled(ctx, enabled); err != nil {
		slog.Warn("issue while switching display for schedule", "enabled", enabled, "error", err)
		return
	}
	slog.Info("switched display for schedule", "enabled", enabled, "time", now)
}

// Run checks the schedule every minute until ctx is done
func (s *ScheduleManager) Run(ctx context.Context) {
	ticker := time.NewTicker(scheduleInterval)
	defer ticker.Stop()

	s.checkSchedule(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkSchedule(ctx)
		}
	}
}
