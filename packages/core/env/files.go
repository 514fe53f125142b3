package env

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/afero"
)

const (
	DefaultPublicFile  = "http-client.env.json"
	DefaultPrivateFile = "http-client.private.env.json"
)

// envFile is the decoded content of one environment file: environment name
// to variable name to value.
type envFile map[string]map[string]string

// names returns the environment names in sorted order.
func (f envFile) names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// readFile loads one environment file. Missing, unreadable or malformed
// files yield nil.
func (r *Resolver) readFile(dir string, private bool) envFile {
	name := r.publicFile
	if private {
		name = r.privateFile
	}
	path := filepath.Join(dir, name)

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("environment file unreadable", "path", path, "error", err)
		}
		return nil
	}

	parsed, err := decodeEnvFile(data)
	if err != nil {
		r.logger.Debug("environment file malformed", "path", path, "error", err)
		return nil
	}
	return parsed
}

func decodeEnvFile(data []byte) (envFile, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(envFile, len(raw))
	for envName, body := range raw {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()

		var values map[string]any
		if err := dec.Decode(&values); err != nil {
			// An environment that is not an object has no variables.
			continue
		}

		vars := make(map[string]string, len(values))
		for k, v := range values {
			vars[k] = stringify(v)
		}
		out[envName] = vars
	}
	return out, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// IsEnvFile reports whether name is one of the resolver's environment file names.
func (r *Resolver) IsEnvFile(name string) bool {
	return name == r.publicFile || name == r.privateFile
}

// Files reports which environment files exist in dir.
func (r *Resolver) Files(dir string) (public, private bool) {
	public, _ = afero.Exists(r.fs, filepath.Join(dir, r.publicFile))
	private, _ = afero.Exists(r.fs, filepath.Join(dir, r.privateFile))
	return public, private
}
