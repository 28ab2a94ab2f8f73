package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"nudge/internal/config"
	"nudge/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckEmailSettings reports which of sender, credential and recipient are missing.
func CheckEmailSettings(cfg *config.Config) Result {
	const name = "Email settings"
	var missing []string
	if cfg.Email.Sender == "" {
		missing = append(missing, "EMAIL_SENDER")
	}
	if cfg.Email.Password == "" {
		missing = append(missing, "EMAIL_PASSWORD")
	}
	if cfg.Email.Recipient == "" {
		missing = append(missing, "EMAIL_RECIPIENT")
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "missing " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s -> %s via %s:%d",
		cfg.Email.Sender, cfg.Email.Recipient, cfg.Email.SMTPHost, cfg.Email.SMTPPort)}
}

// CheckSMTP opens and closes a TCP connection to the SMTP server.
func CheckSMTP(ctx context.Context, host string, port int) Result {
	const name = "SMTP server"
	host = strings.TrimSpace(host)
	if host == "" {
		return Result{Name: name, Detail: "missing host"}
	}
	address := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (timed out)", address)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (%v)", address, err)}
	}
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", address)}
}

// CheckProgressFile verifies the progress document parses. A missing file
// passes because the tracker creates it on first use.
func CheckProgressFile(path string) Result {
	const name = "Progress file"
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: invalid JSON: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckFont verifies the configured font file is readable.
func CheckFont(path string) Result {
	const name = "Video font"
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v; falling back to built-in font)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSystemDeps evaluates the external binaries for the given config. Both
// the daemon and the CLI status command use this list.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	var requirements []deps.Requirement
	if cfg.Video.Enabled {
		requirements = append(requirements,
			deps.Requirement{
				Name:        "FFmpeg",
				Command:     cfg.FFmpegBinary(),
				Description: "Required to encode the evening video",
			},
			deps.Requirement{
				Name:        "FFprobe",
				Command:     cfg.FFprobeBinary(),
				Description: "Measures narration length before muxing",
				Optional:    !cfg.Speech.Enabled,
			},
		)
	}
	if cfg.Video.Enabled && cfg.Speech.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "Speech engine",
			Command:     cfg.Speech.Binary,
			Description: "Narrates the evening video; missing narration only degrades it",
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}
