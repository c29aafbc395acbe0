// Package doctor runs runtime readiness diagnostics for config, audio, the
// recognizer backend, and the control socket.
package doctor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/AbokiLearn/disappility/internal/audio"
	"github.com/AbokiLearn/disappility/internal/config"
	"github.com/AbokiLearn/disappility/internal/ipc"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{checkConfig(cfg)}
	checks = append(checks, checkAudioSelection(ctx, cfg.Config))
	checks = append(checks, checkRecognizer(cfg.Config))
	checks = append(checks, checkSocket())
	return Report{Checks: checks}
}

// checkConfig reports where config came from and any load warning.
func checkConfig(cfg config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("no file at %q, using defaults", cfg.Path)
	}
	if cfg.Warning != "" {
		message = message + " (" + cfg.Warning + ")"
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkRecognizer validates backend-specific readiness: a reachable endpoint
// for whisper, a present API key for openai.
func checkRecognizer(cfg config.Config) Check {
	switch strings.ToLower(strings.TrimSpace(cfg.Recognizer.Backend)) {
	case "whisper":
		return checkWhisperEndpoint(cfg.Recognizer.Endpoint)
	case "openai":
		if config.APIKey() == "" {
			return Check{Name: "recognizer.openai", Pass: false, Message: "no API key in DISAPPILITY_OPENAI_API_KEY or OPENAI_API_KEY"}
		}
		return Check{Name: "recognizer.openai", Pass: true, Message: "API key present"}
	default:
		return Check{Name: "recognizer.backend", Pass: false, Message: fmt.Sprintf("unknown backend %q", cfg.Recognizer.Backend)}
	}
}

// checkWhisperEndpoint probes the configured whisper-server inference URL.
// Any HTTP response counts as reachable; only transport failure is fatal.
func checkWhisperEndpoint(endpoint string) Check {
	url := strings.TrimSpace(endpoint)
	if url == "" {
		return Check{Name: "recognizer.endpoint", Pass: false, Message: "recognizer.endpoint is empty"}
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return Check{Name: "recognizer.endpoint", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	return Check{Name: "recognizer.endpoint", Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
}

// checkSocket reports whether another listener already owns the control socket.
func checkSocket() Check {
	path, err := ipc.RuntimeSocketPath()
	if err != nil {
		return Check{Name: "control.socket", Pass: false, Message: err.Error()}
	}

	conn, err := net.DialTimeout("unix", path, time.Second)
	if err == nil {
		conn.Close()
		return Check{Name: "control.socket", Pass: true, Message: fmt.Sprintf("listener active at %s", path)}
	}
	if ipc.IsSocketMissing(err) || ipc.IsConnectionRefused(err) {
		return Check{Name: "control.socket", Pass: true, Message: fmt.Sprintf("no listener at %s", path)}
	}
	return Check{Name: "control.socket", Pass: false, Message: fmt.Sprintf("probe failed: %v", err)}
}
