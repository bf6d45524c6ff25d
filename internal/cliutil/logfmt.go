package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Paintersrp/uvcview/internal/engine"
)

// LogRecord represents a lifecycle event ready for JSON encoding.
type LogRecord struct {
	Timestamp time.Time `json:"ts"`
	Level     string    `json:"level"`
	State     string    `json:"state"`
	Previous  string    `json:"previous,omitempty"`
	Device    string    `json:"device,omitempty"`
	Pid       int       `json:"pid,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Message   string    `json:"msg"`
	Error     string    `json:"error,omitempty"`
}

// NewLogRecord converts a supervisor event into a structured log record.
func NewLogRecord(event engine.Event) LogRecord {
	level := event.Level
	if level == "" {
		level = "info"
	}
	record := LogRecord{
		Timestamp: event.Timestamp,
		Level:     level,
		State:     string(event.State),
		Device:    event.Device,
		Pid:       event.Pid,
		Reason:    event.Reason,
		Message:   event.Message,
	}
	if event.Previous != event.State {
		record.Previous = string(event.Previous)
	}
	if event.Err != nil {
		record.Error = event.Err.Error()
	}
	return record
}

// Line renders the record as a single human readable line.
func (r LogRecord) Line() string {
	var b strings.Builder
	b.WriteString(r.Timestamp.Format("15:04:05"))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(r.Level))
	b.WriteString(r.Message)
	if r.Error != "" {
		b.WriteString(": ")
		b.WriteString(r.Error)
	}
	var attrs []string
	if r.Device != "" {
		attrs = append(attrs, fmt.Sprintf("device=%q", r.Device))
	}
	if r.Pid > 0 {
		attrs = append(attrs, fmt.Sprintf("pid=%d", r.Pid))
	}
	if r.Reason != "" {
		attrs = append(attrs, "reason="+r.Reason)
	}
	if len(attrs) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(attrs, " "))
		b.WriteByte(']')
	}
	return b.String()
}

// EncodeLogEvent encodes an event to JSON, reporting errors to stderr if needed.
func EncodeLogEvent(enc *json.Encoder, stderr io.Writer, event engine.Event) {
	if enc == nil {
		return
	}
	record := NewLogRecord(event)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := enc.Encode(&record); err != nil {
		fmt.Fprintf(stderr, "error: encode log: %v\n", err)
	}
}
