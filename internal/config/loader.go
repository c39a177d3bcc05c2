package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/davidgut1982/mcp-diagnostics/internal/cache"
)

// serversSchema validates the Claude-style mcp_servers.json layout before parsing.
const serversSchema = `{
	"type": "object",
	"required": ["mcpServers"],
	"properties": {
		"mcpServers": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"command": {"type": "string"},
					"args": {"type": "array", "items": {"type": "string"}},
					"env": {"type": "object", "additionalProperties": {"type": "string"}},
					"description": {"type": "string"},
					"transport": {
						"type": "object",
						"required": ["type"],
						"properties": {
							"type": {"type": "string"},
							"url": {"type": "string"}
						}
					}
				}
			}
		}
	}
}`

// claudeServer mirrors one entry of the mcpServers section.
type claudeServer struct {
	Command     string            `json:"command"`
	Args        []string          `json:"args"`
	Env         map[string]string `json:"env"`
	Description string            `json:"description"`
	Transport   *struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"transport"`
}

// Load reads a server registry from path. TOML files use the native layout;
// '.json' files are treated as Claude-style mcp_servers.json.
// An 'http://' or 'https://' path is fetched through the local registry cache.
func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	source := path
	if isRemote(path) {
		local, err := d.fetchRemote(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)
		}
		path = local
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found (%s)", ErrConfigLoadFailed, path)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var (
		cfg *Config
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		cfg, err = loadServersJSON(path)
	} else {
		cfg, err = loadTOML(path)
	}
	if err != nil {
		return nil, err
	}

	cfg.configFilePath = source

	return cfg, nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// fetchRemote downloads a remote registry through the local cache and returns
// the path of the cached copy.
func (d *DefaultLoader) fetchRemote(remoteURL string) (string, error) {
	logger := d.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	c, err := cache.NewCache(logger, d.CacheOptions...)
	if err != nil {
		return "", err
	}

	return c.Fetch(remoteURL)
}

func loadTOML(path string) (*Config, error) {
	var cfg *Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	return cfg, nil
}

func loadServersJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(serversSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, fmt.Errorf("%w (%s): %s", ErrConfigInvalid, path, strings.Join(details, "; "))
	}

	var parsed struct {
		MCPServers map[string]claudeServer `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	names := make([]string, 0, len(parsed.MCPServers))
	for name := range parsed.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	cfg := &Config{Servers: make([]ServerEntry, 0, len(names))}
	for _, name := range names {
		s := parsed.MCPServers[name]
		entry := ServerEntry{
			Name:        name,
			Command:     s.Command,
			Args:        s.Args,
			Env:         s.Env,
			Description: s.Description,
		}
		if s.Transport != nil {
			entry.URL = s.Transport.URL
		}
		cfg.Servers = append(cfg.Servers, entry)
	}

	return cfg, nil
}
