package loader

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

var varPattern = regexp.MustCompile(`\$\$|\$(\w+)|\$\{(\w+)(?::-([^}]+)?)?\}`)

// Interpolate substitutes $NAME, ${NAME} and ${NAME:-default} in input from
// vars. $$ produces a literal $. An unknown name without a default expands to
// the empty string and adds a warning. Malformed references such as "${}" or
// "${NAME x" are left alone.
func Interpolate(input string, vars map[string]string) (string, []string) {
	var warnings []string
	out := varPattern.ReplaceAllStringFunc(input, func(match string) string {
		caps := varPattern.FindStringSubmatch(match)
		name := caps[1]
		if name == "" {
			name = caps[2]
		}
		if name == "" {
			return "$"
		}
		if val, ok := vars[name]; ok {
			return val
		}
		if caps[3] != "" {
			return caps[3]
		}
		warnings = append(warnings, fmt.Sprintf("unknown variable in program source: %q", name))
		return ""
	})
	return out, warnings
}

// LoadEnvFiles reads .env style files in order; later files override earlier ones.
func LoadEnvFiles(paths ...string) (map[string]string, error) {
	vars := map[string]string{}
	for _, p := range paths {
		fileVars, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", p, err)
		}
		maps.Copy(vars, fileVars)
	}
	return vars, nil
}

// EnvVars merges the given env files with the process environment. Process
// variables win, matching godotenv.Load.
func EnvVars(paths ...string) (map[string]string, error) {
	vars, err := LoadEnvFiles(paths...)
	if err != nil {
		return nil, err
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars, nil
}
