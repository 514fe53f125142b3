package env

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// RootSource labels variables defined at the collection root.
const RootSource = "root"

// EnvironmentVariable is one resolved variable and where it came from.
type EnvironmentVariable struct {
	Name            string `json:"name"`
	Value           string `json:"value"`
	IsPrivate       bool   `json:"isPrivate"`
	Source          string `json:"source"`
	IsInherited     bool   `json:"isInherited"`
	IsOverridden    bool   `json:"isOverridden"`
	IsEditable      bool   `json:"isEditable"`
	ParentValue     string `json:"parentValue,omitempty"`
	ParentIsPrivate bool   `json:"parentIsPrivate,omitempty"`
	ParentSource    string `json:"parentSource,omitempty"`
}

// AvailableEnvironment is an environment name visible from a folder.
type AvailableEnvironment struct {
	Name                string `json:"name"`
	Source              string `json:"source"`
	IsFromCurrentFolder bool   `json:"isFromCurrentFolder"`
}

// Resolver reads environment files along the folder chain of a collection.
type Resolver struct {
	fs          afero.Fs
	publicFile  string
	privateFile string
	logger      *slog.Logger
}

type ResolverOption func(*Resolver)

// WithFileNames overrides the public and private environment file names.
// Empty names keep the defaults.
func WithFileNames(public, private string) ResolverOption {
	return func(r *Resolver) {
		if public != "" {
			r.publicFile = public
		}
		if private != "" {
			r.privateFile = private
		}
	}
}

func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewResolver(fs afero.Fs, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fs:          fs,
		publicFile:  DefaultPublicFile,
		privateFile: DefaultPrivateFile,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// folderVisit is one step of the walk from a folder up to the root.
type folderVisit struct {
	dir     string
	source  string
	depth   int
	current bool
}

// walk calls fn for folder and each ancestor up to root, closest first.
// The starting folder is always visited; a folder outside root ends the walk
// after its visit.
func walk(folder, root string, fn func(v folderVisit)) {
	dir := filepath.Clean(folder)
	root = filepath.Clean(root)

	for depth := 0; ; depth++ {
		source := filepath.Base(dir)
		if dir == root {
			source = RootSource
		}
		fn(folderVisit{dir: dir, source: source, depth: depth, current: depth == 0})

		if dir == root || !within(root, dir) {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func within(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Variables resolves envName for folder. The closest definition of a name
// wins; the nearest farther definition is recorded as its parent.
func (r *Resolver) Variables(envName, folder, root string) []EnvironmentVariable {
	var out []EnvironmentVariable
	index := make(map[string]int)
	depthOf := make(map[string]int)

	walk(folder, root, func(v folderVisit) {
		for _, private := range []bool{true, false} {
			values := r.readFile(v.dir, private)[envName]
			for _, name := range sortedKeys(values) {
				value := values[name]

				if i, ok := index[name]; ok {
					existing := &out[i]
					if depthOf[name] < v.depth && !existing.IsOverridden {
						existing.IsOverridden = true
						existing.ParentValue = value
						existing.ParentIsPrivate = private
						existing.ParentSource = v.source
					}
					continue
				}

				index[name] = len(out)
				depthOf[name] = v.depth
				out = append(out, EnvironmentVariable{
					Name:        name,
					Value:       value,
					IsPrivate:   private,
					Source:      v.source,
					IsInherited: !v.current,
					IsEditable:  v.current,
				})
			}
		}
	})

	r.logger.Debug("resolved environment", "environment", envName, "folder", folder, "variables", len(out))
	return out
}

// VariableMap flattens Variables into name to value.
func (r *Resolver) VariableMap(envName, folder, root string) map[string]string {
	vars := r.Variables(envName, folder, root)
	m := make(map[string]string, len(vars))
	for _, v := range vars {
		m[v.Name] = v.Value
	}
	return m
}

// Environments lists the environment names visible from folder, closest
// definition first.
func (r *Resolver) Environments(folder, root string) []AvailableEnvironment {
	var out []AvailableEnvironment
	seen := make(map[string]bool)

	walk(folder, root, func(v folderVisit) {
		for _, private := range []bool{true, false} {
			for _, name := range r.readFile(v.dir, private).names() {
				if seen[name] {
					continue
				}
				seen[name] = true
				out = append(out, AvailableEnvironment{
					Name:                name,
					Source:              v.source,
					IsFromCurrentFolder: v.current,
				})
			}
		}
	})
	return out
}
