package preflight

import (
	"context"

	"nudge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local preflight checks for cfg. Network reachability is
// left to CheckSMTP so startup never blocks on DNS.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckEmailSettings(cfg),
		CheckProgressFile(cfg.Paths.ProgressFile),
	}
	if cfg.Video.Enabled {
		results = append(results, CheckDirectoryAccess("Videos directory", cfg.Paths.VideosDir))
		if cfg.Video.FontPath != "" {
			results = append(results, CheckFont(cfg.Video.FontPath))
		}
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		r := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			r.Detail = status.Path
		} else if status.Optional {
			r.Passed = true
			r.Detail = status.Detail + " (optional)"
		}
		results = append(results, r)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
