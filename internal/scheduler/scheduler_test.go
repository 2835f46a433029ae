package scheduler

import (
	"testing"
	"time"
)

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ScheduleTime
		wantErr bool
	}{
		{"03:00", ScheduleTime{Hour: 3, Minute: 0}, false},
		{"23:59", ScheduleTime{Hour: 23, Minute: 59}, false},
		{"0:5", ScheduleTime{Hour: 0, Minute: 5}, false},
		{"24:00", ScheduleTime{}, true},
		{"12:60", ScheduleTime{}, true},
		{"noon", ScheduleTime{}, true},
		{"", ScheduleTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScheduleTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScheduleTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseScheduleTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestScheduleTime_String(t *testing.T) {
	st := ScheduleTime{Hour: 3, Minute: 5}
	if got := st.String(); got != "03:05" {
		t.Errorf("String() = %q, want %q", got, "03:05")
	}
}

func TestNewScheduler_RequiresScheduleTimes(t *testing.T) {
	_, err := NewScheduler(SchedulerConfig{WorkerCount: 1, QueueSize: 1})
	if err == nil {
		t.Error("NewScheduler() should fail without schedule times")
	}
}

func TestNewScheduler_RejectsBadScheduleTime(t *testing.T) {
	_, err := NewScheduler(SchedulerConfig{
		ScheduleTimes: []string{"03:00", "25:00"},
		WorkerCount:   1,
		QueueSize:     1,
	})
	if err == nil {
		t.Error("NewScheduler() should fail on an unparseable schedule time")
	}
}

func TestScheduler_ShouldRunOncePerMinute(t *testing.T) {
	s, err := NewScheduler(SchedulerConfig{
		ScheduleTimes: []string{"03:00"},
		WorkerCount:   1,
		QueueSize:     1,
	})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	at := time.Date(2026, 1, 15, 3, 0, 30, 0, time.UTC)

	if !s.shouldRun(at) {
		t.Error("first tick at the scheduled minute should run")
	}
	if s.shouldRun(at.Add(10 * time.Second)) {
		t.Error("second tick within the same minute should not run again")
	}
	if !s.shouldRun(at.AddDate(0, 0, 1)) {
		t.Error("the same minute on the next day should run")
	}
}

func TestScheduler_ShouldRunSkipsOtherMinutes(t *testing.T) {
	s, err := NewScheduler(SchedulerConfig{
		ScheduleTimes: []string{"03:00"},
		WorkerCount:   1,
		QueueSize:     1,
	})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	if s.shouldRun(time.Date(2026, 1, 15, 3, 1, 0, 0, time.UTC)) {
		t.Error("a minute past the schedule should not run")
	}
}
