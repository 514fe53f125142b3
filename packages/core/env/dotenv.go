package env

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// LoadDotEnv parses a .env file and returns its key-value pairs. Values are
// not exported to the process environment.
func LoadDotEnv(fs afero.Fs, path string) (map[string]string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer file.Close()

	values, err := godotenv.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return values, nil
}
