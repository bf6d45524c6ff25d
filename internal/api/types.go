package api

import (
	"time"

	"github.com/Paintersrp/uvcview/internal/engine"
)

// StatusReport is the JSON view of the player supervisor.
type StatusReport struct {
	State       engine.State `json:"state"`
	Device      string       `json:"device,omitempty"`
	Pid         int          `json:"pid,omitempty"`
	Executable  string       `json:"executable"`
	Since       time.Time    `json:"since"`
	LastError   string       `json:"last_error,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// NewStatusReport converts a supervisor snapshot.
func NewStatusReport(st engine.Status) StatusReport {
	report := StatusReport{
		State:       st.State,
		Device:      st.Device,
		Pid:         st.Pid,
		Executable:  st.Executable,
		Since:       st.Since,
		GeneratedAt: time.Now().UTC(),
	}
	if st.Err != nil {
		report.LastError = st.Err.Error()
	}
	return report
}

// StatusSource exposes the supervisor state to read-only servers.
type StatusSource interface {
	Status() engine.Status
}
