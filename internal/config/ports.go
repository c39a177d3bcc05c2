package config

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// PortConflict records a port claimed by more than one server.
type PortConflict struct {
	Port    int      `json:"port"`
	Servers []string `json:"servers"`
}

// ServerPort pairs a server with its assigned port.
type ServerPort struct {
	Server string `json:"server"`
	Port   int    `json:"port"`
}

// PortReport summarises port assignments across the registry.
// Servers on stdio transports do not need ports; only SSE servers
// missing a port, conflicts, and out-of-range assignments count as issues.
type PortReport struct {
	PortMap         map[string]int `json:"port_map"`
	Conflicts       []PortConflict `json:"conflicts"`
	StdioServers    []string       `json:"stdio_servers"`
	SSEServers      []string       `json:"sse_servers"`
	SSEWithoutPorts []string       `json:"sse_servers_without_ports"`
	OutOfRange      []ServerPort   `json:"ports_out_of_range"`
	Gaps            []int          `json:"gaps"`
	RangeMin        int            `json:"range_min"`
	RangeMax        int            `json:"range_max"`
	IssuesFound     int            `json:"issues_found"`
}

// CheckPorts extracts SSE port assignments from launch arguments and reports
// conflicts, SSE servers without ports, out-of-range ports, and unused ports
// in the expected range.
func CheckPorts(cfg *Config, rangeMin, rangeMax int) PortReport {
	report := PortReport{
		PortMap:  make(map[string]int),
		RangeMin: rangeMin,
		RangeMax: rangeMax,
	}

	byPort := make(map[int][]string)

	for _, entry := range cfg.Servers {
		port, hasPort := extractPort(entry.Args)
		if hasPort {
			report.PortMap[entry.Name] = port
			byPort[port] = append(byPort[port], entry.Name)
			if port < rangeMin || port > rangeMax {
				report.OutOfRange = append(report.OutOfRange, ServerPort{Server: entry.Name, Port: port})
			}
		}

		if isSSEServer(entry, hasPort) {
			report.SSEServers = append(report.SSEServers, entry.Name)
			if !hasPort {
				report.SSEWithoutPorts = append(report.SSEWithoutPorts, entry.Name)
			}
		} else {
			report.StdioServers = append(report.StdioServers, entry.Name)
		}
	}

	for port, servers := range byPort {
		if len(servers) > 1 {
			sort.Strings(servers)
			report.Conflicts = append(report.Conflicts, PortConflict{Port: port, Servers: servers})
		}
	}
	sort.Slice(report.Conflicts, func(i, j int) bool { return report.Conflicts[i].Port < report.Conflicts[j].Port })
	sort.Slice(report.OutOfRange, func(i, j int) bool { return report.OutOfRange[i].Port < report.OutOfRange[j].Port })

	// Gaps only matter when the registry uses SSE ports at all.
	if len(report.SSEServers) > 0 {
		used := make(map[int]struct{}, len(report.PortMap))
		for _, p := range report.PortMap {
			used[p] = struct{}{}
		}
		for p := rangeMin; p <= rangeMax; p++ {
			if _, ok := used[p]; !ok {
				report.Gaps = append(report.Gaps, p)
			}
		}
	}

	report.IssuesFound = len(report.Conflicts) + len(report.SSEWithoutPorts) + len(report.OutOfRange)

	return report
}

// isSSEServer classifies an entry as SSE (port-requiring) or stdio.
// Explicit stdio launchers never need ports; anything else that already
// carries a port is assumed to be an SSE gateway.
func isSSEServer(entry ServerEntry, hasPort bool) bool {
	switch {
	case entry.Command == "uvx":
		return false
	case entry.Command == "uv" && slices.Contains(entry.Args, "run"):
		return false
	case entry.Command == "npx" && slices.Contains(entry.Args, "--sse"):
		return true
	default:
		return hasPort
	}
}

// extractPort finds a local SSE endpoint in launch arguments
// (format: http://localhost:PORT/sse) and returns its port.
func extractPort(args []string) (int, bool) {
	const marker = "http://localhost:"

	for _, arg := range args {
		if !strings.Contains(arg, marker) || !strings.Contains(arg, "/sse") {
			continue
		}
		rest := arg[strings.Index(arg, marker)+len(marker):]
		portStr, _, _ := strings.Cut(rest, "/")
		port, err := strconv.Atoi(portStr)
		if err != nil {
			continue
		}
		return port, true
	}

	return 0, false
}
