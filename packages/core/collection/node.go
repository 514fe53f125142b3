package collection

import (
	"errors"

	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
)

// SkipChildren is returned by a WalkFunc to skip the children of the
// current node.
var SkipChildren = errors.New("skip children")

// Environments records which environment files a folder holds.
type Environments struct {
	FolderPath string `json:"folderPath"`
	HasPublic  bool   `json:"hasPublicEnv"`
	HasPrivate bool   `json:"hasPrivateEnv"`
}

// Node is a folder, a request file, or both when a folder and a file share
// a title.
type Node struct {
	Title        string            `json:"title"`
	FolderPath   string            `json:"folderPath,omitempty"`
	FilePath     string            `json:"filePath,omitempty"`
	HasReadme    bool              `json:"hasReadme"`
	Environments *Environments     `json:"environments,omitempty"`
	Sections     []*parser.Section `json:"-"`
	Children     []*Node           `json:"items,omitempty"`
}

func (n *Node) IsFolder() bool {
	return n.FolderPath != ""
}

func (n *Node) IsFile() bool {
	return n.FilePath != ""
}

// WalkFunc is called for every node with its depth below the root.
type WalkFunc func(n *Node, depth int) error

// Walk visits the tree in depth-first pre-order. Returning SkipChildren
// skips the node's children; any other error stops the walk and is returned.
func (t *Tree) Walk(fn WalkFunc) error {
	if t == nil || t.Root == nil {
		return nil
	}

	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{t.Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		err := fn(f.node, f.depth)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
	return nil
}

// Files returns the paths of all request files in walk order.
func (t *Tree) Files() []string {
	var files []string
	_ = t.Walk(func(n *Node, _ int) error {
		if n.IsFile() {
			files = append(files, n.FilePath)
		}
		return nil
	})
	return files
}

// Find returns the node for a request file path, or nil.
func (t *Tree) Find(filePath string) *Node {
	var found *Node
	errFound := errors.New("found")
	_ = t.Walk(func(n *Node, _ int) error {
		if n.FilePath == filePath {
			found = n
			return errFound
		}
		return nil
	})
	return found
}
