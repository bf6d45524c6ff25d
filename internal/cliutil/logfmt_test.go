package cliutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Paintersrp/uvcview/internal/engine"
)

func TestEncodeLogEventDefaultsLevel(t *testing.T) {
	var out bytes.Buffer
	var errBuf bytes.Buffer

	EncodeLogEvent(json.NewEncoder(&out), &errBuf, engine.Event{
		Timestamp: time.Unix(0, 0),
		State:     engine.StateRunning,
		Previous:  engine.StateIdle,
		Device:    "Cam 1",
		Pid:       42,
		Message:   "player started",
		Reason:    engine.ReasonLaunch,
	})

	if errBuf.Len() != 0 {
		t.Fatalf("unexpected stderr output: %s", errBuf.String())
	}

	var record LogRecord
	if err := json.Unmarshal(out.Bytes(), &record); err != nil {
		t.Fatalf("failed to unmarshal log record: %v", err)
	}
	if record.Level != "info" {
		t.Fatalf("expected level info, got %q", record.Level)
	}
	if record.State != "running" || record.Previous != "idle" {
		t.Fatalf("unexpected states: %+v", record)
	}
	if record.Device != "Cam 1" || record.Pid != 42 || record.Reason != engine.ReasonLaunch {
		t.Fatalf("unexpected attributes: %+v", record)
	}
}

func TestEncodeLogEventFillsTimestamp(t *testing.T) {
	var out bytes.Buffer
	EncodeLogEvent(json.NewEncoder(&out), &bytes.Buffer{}, engine.Event{Message: "x"})

	var record LogRecord
	if err := json.Unmarshal(out.Bytes(), &record); err != nil {
		t.Fatalf("failed to unmarshal log record: %v", err)
	}
	if record.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be filled")
	}
}

func TestNewLogRecordKeepsErrorAndLevel(t *testing.T) {
	record := NewLogRecord(engine.Event{
		State:    engine.StateStopFailed,
		Previous: engine.StateStopping,
		Level:    "error",
		Message:  "stop failed",
		Err:      errors.New("access denied"),
	})
	if record.Level != "error" {
		t.Fatalf("expected provided level, got %q", record.Level)
	}
	if record.Error != "access denied" {
		t.Fatalf("expected error text, got %q", record.Error)
	}
}

func TestNewLogRecordOmitsUnchangedPrevious(t *testing.T) {
	record := NewLogRecord(engine.Event{State: engine.StateRunning, Previous: engine.StateRunning})
	if record.Previous != "" {
		t.Fatalf("expected previous to be omitted, got %q", record.Previous)
	}
}

func TestLogRecordLine(t *testing.T) {
	ts := time.Date(2024, 1, 2, 13, 4, 5, 0, time.Local)
	tests := []struct {
		name   string
		record LogRecord
		want   string
	}{
		{
			name:   "message only",
			record: LogRecord{Timestamp: ts, Level: "info", Message: "no player running"},
			want:   "13:04:05 INFO  no player running",
		},
		{
			name:   "with error",
			record: LogRecord{Timestamp: ts, Level: "error", Message: "launch failed", Error: "exec format error"},
			want:   "13:04:05 ERROR launch failed: exec format error",
		},
		{
			name:   "with attributes",
			record: LogRecord{Timestamp: ts, Level: "info", Message: "player started", Device: "Cam 1", Pid: 7, Reason: "launch"},
			want:   `13:04:05 INFO  player started [device="Cam 1" pid=7 reason=launch]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Line(); got != tt.want {
				t.Fatalf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}
