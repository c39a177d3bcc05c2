package config

import (
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/cache"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
)

var _ Loader = (*DefaultLoader)(nil)

// Loader loads a server registry from a file path.
type Loader interface {
	Load(path string) (*Config, error)
}

// DefaultLoader loads registries in TOML or Claude-style JSON format,
// selected by file extension. Remote registries are fetched through the
// local registry cache.
type DefaultLoader struct {
	// Logger is used for remote registry fetches. Optional.
	Logger hclog.Logger

	// CacheOptions tune the cache used for remote registries. Optional.
	CacheOptions []cache.Option
}

// Config represents the loaded server registry.
type Config struct {
	Servers []ServerEntry `toml:"servers" json:"servers"`

	configFilePath string
}

// ServerEntry represents the configuration of a single MCP server.
type ServerEntry struct {
	// Name is the unique name/ID referenced by the user.
	// e.g. 'github-mcp'
	Name string `json:"name" toml:"name" yaml:"name"`

	// Command is the executable for stdio servers.
	// e.g. 'uvx'
	Command string `json:"command,omitempty" toml:"command,omitempty" yaml:"command,omitempty"`

	// Args are passed to Command when launching a stdio server.
	Args []string `json:"args,omitempty" toml:"args,omitempty" yaml:"args,omitempty"`

	// Env contains server-specific environment overrides.
	Env map[string]string `json:"env,omitempty" toml:"env,omitempty" yaml:"env,omitempty"`

	// URL is the endpoint for HTTP/SSE servers.
	URL string `json:"url,omitempty" toml:"url,omitempty" yaml:"url,omitempty"`

	// Description documents what the server provides.
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`
}

// Transport infers how the server is reached: a URL means HTTP,
// otherwise a command means stdio.
func (e *ServerEntry) Transport() domain.Transport {
	switch {
	case e.URL != "":
		return domain.TransportHTTP
	case e.Command != "":
		return domain.TransportStdio
	default:
		return domain.TransportUnknown
	}
}

// Descriptor converts the entry into a probe target.
func (e *ServerEntry) Descriptor() domain.ServerDescriptor {
	return domain.ServerDescriptor{
		Name:      e.Name,
		Transport: e.Transport(),
		Command:   e.Command,
		Args:      e.Args,
		Env:       e.Env,
		URL:       e.URL,
	}
}

// ListServers returns a copy of all configured server entries.
func (c *Config) ListServers() []ServerEntry {
	out := make([]ServerEntry, len(c.Servers))
	copy(out, c.Servers)
	return out
}

// Descriptors converts every entry into a probe target, ordered by name.
func (c *Config) Descriptors() []domain.ServerDescriptor {
	out := make([]domain.ServerDescriptor, 0, len(c.Servers))
	for _, e := range c.Servers {
		out = append(out, e.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FilePath returns the path this configuration was loaded from.
func (c *Config) FilePath() string {
	return c.configFilePath
}
