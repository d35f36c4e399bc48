// Package appconf holds process and engine configuration.
package appconf

import "strings"

// Environment is the deployment environment.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

// EnvFlagToEnvironment maps the -env flag value. Unknown values mean
// Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// Config holds the settings of the HTTP process, mostly from flags.
type Config struct {
	Port    int
	Env     Environment
	ApiKeys []string
	// RateLimit is requests per second per API key.
	RateLimit      int
	AllowedOrigins []string
	LogLevel       string
	// ConfigFile is the engine YAML file; empty means defaults.
	ConfigFile string
}

// SplitList splits a comma separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
