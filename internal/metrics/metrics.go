package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	playerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "uvcview",
		Name:      "player_state",
		Help:      "Current lifecycle state of the player (1 for the active state).",
	}, []string{"state"})

	launches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uvcview",
		Name:      "launches_total",
		Help:      "Player start requests by result.",
	}, []string{"result"})

	stops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uvcview",
		Name:      "stops_total",
		Help:      "Player stop requests by how the player ended.",
	}, []string{"mode"})

	stopDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "uvcview",
		Name:      "stop_duration_seconds",
		Help:      "Time from a stop request until the player was confirmed gone.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 3, 5},
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "uvcview",
		Name:      "build_info",
		Help:      "Build metadata for the running uvcview binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	stateMu       sync.Mutex
	buildInfoOnce sync.Once
)

// Launch results.
const (
	LaunchOK       = "ok"
	LaunchFailed   = "failed"
	LaunchRejected = "rejected"
)

// Stop modes.
const (
	StopGraceful = "graceful"
	StopForced   = "forced"
	StopNoop     = "noop"
	StopFailed   = "failed"
)

func init() {
	registry.MustRegister(playerState, launches, stops, stopDuration, buildInfo)
}

// Registry returns the Prometheus registry containing all uvcview metrics.
func Registry() *prometheus.Registry {
	return registry
}

// SetPlayerState marks state as the only active player state.
func SetPlayerState(state string) {
	if state == "" {
		return
	}
	stateMu.Lock()
	defer stateMu.Unlock()
	playerState.Reset()
	playerState.WithLabelValues(state).Set(1)
}

// RecordLaunch counts a start request.
func RecordLaunch(result string) {
	if result == "" {
		return
	}
	launches.WithLabelValues(result).Inc()
}

// RecordStop counts a stop request and, for stops that had a child to end,
// observes how long it took.
func RecordStop(mode string, d time.Duration) {
	if mode == "" {
		return
	}
	stops.WithLabelValues(mode).Inc()
	if mode != StopNoop {
		stopDuration.Observe(d.Seconds())
	}
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
