package configuration

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// GodotenvProvider reads env-style configuration files with godotenv.
type GodotenvProvider struct{}

// ReadOptional reads the env-style file at path into a map (map[key]value).
// The second return value is false if no file exists at path.
func (*GodotenvProvider) ReadOptional(path string) (map[string]string, bool, error) {
	data, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, fmt.Errorf("(config-godotenv) %w", err)
	}

	return data, true, nil
}
