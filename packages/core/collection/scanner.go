package collection

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/abdul-hamid-achik/reqfile/packages/core/env"
	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
)

const (
	requestExt = ".http"
	readmeExt  = ".md"
)

type Scanner struct {
	fs         afero.Fs
	resolver   *env.Resolver
	logger     *slog.Logger
	sections   bool
	parserOpts []parser.Option
}

type Option func(*Scanner)

// WithResolver sets the resolver whose file names identify environment files.
func WithResolver(r *env.Resolver) Option {
	return func(s *Scanner) {
		s.resolver = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSections parses every request file and attaches its sections.
func WithSections(opts ...parser.Option) Option {
	return func(s *Scanner) {
		s.sections = true
		s.parserOpts = opts
	}
}

func NewScanner(fs afero.Fs, opts ...Option) *Scanner {
	s := &Scanner{
		fs:     fs,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = env.NewResolver(fs, env.WithLogger(s.logger))
	}
	return s
}

// Scan builds the tree of the collection rooted at root.
func Scan(fs afero.Fs, root string, opts ...Option) (*Tree, error) {
	return NewScanner(fs, opts...).Scan(root)
}

func (s *Scanner) Scan(root string) (*Tree, error) {
	root = filepath.Clean(root)
	settings, err := Load(s.fs, root)
	if err != nil {
		return nil, err
	}

	rootNode := &Node{Title: RootTitle, FolderPath: root}
	if err := s.describeFolder(rootNode); err != nil {
		return nil, err
	}

	stack := []*Node{rootNode}
	for len(stack) > 0 {
		folder := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		subfolders, err := s.scanFolder(folder)
		if err != nil {
			if folder == rootNode {
				return nil, err
			}
			s.logger.Warn("skipping unreadable folder", "path", folder.FolderPath, "error", err)
			continue
		}
		stack = append(stack, subfolders...)
	}

	return &Tree{Name: settings.CollectionName, Path: root, Root: rootNode}, nil
}

// scanFolder fills folder.Children and returns the child folders still to scan.
func (s *Scanner) scanFolder(folder *Node) ([]*Node, error) {
	entries, err := afero.ReadDir(s.fs, folder.FolderPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folder.FolderPath, err)
	}

	byTitle := make(map[string]*Node)
	child := func(title string) *Node {
		n, ok := byTitle[title]
		if !ok {
			n = &Node{Title: title}
			byTitle[title] = n
			folder.Children = append(folder.Children, n)
		}
		return n
	}

	var subfolders []*Node
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || s.resolver.IsEnvFile(name) {
			continue
		}
		path := filepath.Join(folder.FolderPath, name)

		if entry.IsDir() {
			n := child(name)
			n.FolderPath = path
			if err := s.describeFolder(n); err != nil {
				s.logger.Warn("skipping unreadable folder", "path", path, "error", err)
				continue
			}
			subfolders = append(subfolders, n)
			continue
		}

		if strings.HasSuffix(name, requestExt) {
			n := child(strings.TrimSuffix(name, requestExt))
			n.FilePath = path
			if s.sections {
				s.attachSections(n)
			}
		}
	}
	return subfolders, nil
}

func (s *Scanner) describeFolder(n *Node) error {
	entries, err := afero.ReadDir(s.fs, n.FolderPath)
	if err != nil {
		return fmt.Errorf("failed to read folder %s: %w", n.FolderPath, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), readmeExt) {
			n.HasReadme = true
			break
		}
	}

	public, private := s.resolver.Files(n.FolderPath)
	if public || private {
		n.Environments = &Environments{FolderPath: n.FolderPath, HasPublic: public, HasPrivate: private}
	}
	return nil
}

func (s *Scanner) attachSections(n *Node) {
	file, err := parser.ParseFile(s.fs, n.FilePath, s.parserOpts...)
	if err != nil {
		s.logger.Warn("failed to parse request file", "path", n.FilePath, "error", err)
		return
	}
	n.Sections = file.Sections
}
