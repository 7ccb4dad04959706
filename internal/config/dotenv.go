package config

import (
	"bufio"
	"os"
	"strings"
)

// LoadDotEnv reads a .env file and exports its entries as environment
// variables. Variables already present in the environment win, so the
// file only fills gaps for local development.
func LoadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err // missing file is fine, the caller ignores it
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}
