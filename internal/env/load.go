// Package env reads a .env file into the process environment before configuration is
// resolved, so CUBESCULPT_* overrides can live next to the binary.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultPath is the .env file read at startup.
const DefaultPath = ".env"

// Load reads path and sets an environment variable for each KEY=VALUE line. Variables
// already present in the environment win over the file. Blank lines, # comments and an
// optional "export " prefix are accepted; a missing file is not an error. It returns the
// keys it set.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var set []string
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if key == "" {
			return set, fmt.Errorf("%s:%d: missing key", path, n)
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return set, fmt.Errorf("%s:%d: %w", path, n, err)
		}
		set = append(set, key)
	}
	return set, scanner.Err()
}

// parseLine splits one line. ok is false for lines that carry no assignment.
func parseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(k)
	value = strings.TrimSpace(v)
	if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' || value[0] == '\'' && value[len(value)-1] == '\'') {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}
