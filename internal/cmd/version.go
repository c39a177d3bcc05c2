package cmd

// version is set at build time using -ldflags.
var version = "dev"

// Version returns the application version.
func Version() string {
	return version
}

// SetVersion overrides the reported application version.
// Intended to be called once from the root command during startup.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
