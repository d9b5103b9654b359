package preflight

import (
	"context"

	"vidrag/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional checks are reported but do not block an ingest.
	Optional bool
}

// RunAll executes all applicable preflight checks for the given config.
// Remote checks (LLM, Postgres) only run when remote is true.
func RunAll(ctx context.Context, cfg *config.Config, remote bool) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))

	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
		switch {
		case status.Available && status.Command != "":
			result.Detail = status.Command
		default:
			result.Detail = status.Detail
		}
		results = append(results, result)
	}

	if !remote {
		return results
	}
	results = append(results, CheckLLM(ctx, "Text generation", cfg.GetLLM()))
	if cfg.Index.Backend == config.BackendPostgres {
		results = append(results, CheckPostgres(ctx, cfg.Index.PostgresDSN))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
