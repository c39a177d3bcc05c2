package config

import (
	"fmt"
	"os"
	"slices"
)

// knownInterpreters are commands treated as direct stdio interpreter launches.
var knownInterpreters = []string{"python", "python3", "node"}

// ServerIssues lists the problems found in one server entry.
type ServerIssues struct {
	Server    string   `json:"server"`
	Transport string   `json:"transport"`
	Issues    []string `json:"issues"`
}

// ValidationReport summarises a configuration validation pass.
type ValidationReport struct {
	TotalServers      int            `json:"total_servers"`
	ConsistentFormat  int            `json:"consistent_format"`
	ServersWithIssues int            `json:"servers_with_issues"`
	TransportStats    map[string]int `json:"transport_stats"`
	Issues            []ServerIssues `json:"issues"`
}

// Validate inspects every server entry for configuration problems: missing
// launch information, launcher arguments that do not fit the launcher, and
// referenced paths that do not exist on disk.
func Validate(cfg *Config) ValidationReport {
	report := ValidationReport{
		TotalServers:   len(cfg.Servers),
		TransportStats: map[string]int{"stdio": 0, "sse": 0, "http": 0, "unknown": 0},
	}

	for _, entry := range cfg.Servers {
		transport, issues := validateEntry(entry)
		report.TransportStats[transport]++

		if len(issues) > 0 {
			report.Issues = append(report.Issues, ServerIssues{
				Server:    entry.Name,
				Transport: transport,
				Issues:    issues,
			})
			continue
		}
		report.ConsistentFormat++
	}

	report.ServersWithIssues = len(report.Issues)

	return report
}

func validateEntry(entry ServerEntry) (string, []string) {
	var issues []string

	transport := "unknown"

	switch {
	case entry.URL != "":
		transport = "http"

	case entry.Command == "":
		issues = append(issues, "missing 'command' field")

	case entry.Command == "uvx":
		// Path-based stdio pattern: uvx --from /path server-name.
		transport = "stdio"
		if idx := slices.Index(entry.Args, "--from"); idx == -1 {
			issues = append(issues, "stdio: missing '--from' in args")
		} else if idx+1 >= len(entry.Args) {
			issues = append(issues, "stdio: missing path after '--from'")
		} else if path := entry.Args[idx+1]; !pathExists(path) {
			issues = append(issues, fmt.Sprintf("stdio: server path not found: %s", path))
		}

	case entry.Command == "npx":
		if slices.Contains(entry.Args, "--sse") {
			transport = "sse"
			if !slices.Contains(entry.Args, "supergateway") {
				issues = append(issues, "sse: not using supergateway")
			}
		} else {
			transport = "stdio"
		}

	case entry.Command == "uv":
		transport = "stdio"
		if !slices.Contains(entry.Args, "run") {
			issues = append(issues, "stdio: missing 'run' in uv args")
		}

	case slices.Contains(knownInterpreters, entry.Command):
		transport = "stdio"

	default:
		issues = append(issues, fmt.Sprintf("unknown command: '%s'", entry.Command))
	}

	if len(entry.Args) == 0 && transport != "http" && entry.Command != "" {
		issues = append(issues, "missing 'args' field")
	}

	if entry.Description == "" {
		issues = append(issues, "missing or empty description")
	}

	return transport, issues
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
