package output

import (
	"strings"

	"github.com/abdul-hamid-achik/reqfile/packages/core/collection"
	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
)

// UntitledName names sections with neither a name nor a URL.
const UntitledName = "Untitled"

// EnvironmentsTitle is the title of environment rows.
const EnvironmentsTitle = "Environments"

type RowKind int

const (
	RowItem RowKind = iota
	RowSection
	RowSpacer
	RowEnvironments
)

func (k RowKind) String() string {
	switch k {
	case RowItem:
		return "item"
	case RowSection:
		return "section"
	case RowSpacer:
		return "spacer"
	case RowEnvironments:
		return "environments"
	default:
		return "unknown"
	}
}

// Row is one line of a flattened collection tree.
type Row struct {
	Kind         RowKind
	Depth        int
	Title        string
	Node         *collection.Node
	Section      *parser.Section
	Environments *collection.Environments
	HasChildren  bool
}

// CollapsedFunc reports whether a node's children are hidden.
type CollapsedFunc func(n *collection.Node) bool

// NodeKey identifies a node for collapse state: its folder path, else its
// file path.
func NodeKey(n *collection.Node) string {
	if n.FolderPath != "" {
		return n.FolderPath
	}
	return n.FilePath
}

// Flatten projects a collection tree into display rows. The first row is
// always the root environments row.
func Flatten(tree *collection.Tree, collapsed CollapsedFunc) []Row {
	if collapsed == nil {
		collapsed = func(*collection.Node) bool { return false }
	}

	rootEnv := &collection.Environments{FolderPath: tree.Path}
	if tree.Root != nil && tree.Root.Environments != nil {
		rootEnv = tree.Root.Environments
	}
	rows := []Row{{Kind: RowEnvironments, Title: EnvironmentsTitle, Environments: rootEnv}}
	if tree.Root == nil {
		return rows
	}

	type frame struct {
		node  *collection.Node
		depth int
	}
	stack := make([]frame, 0, len(tree.Root.Children))
	for i := len(tree.Root.Children) - 1; i >= 0; i-- {
		stack = append(stack, frame{tree.Root.Children[i], 0})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, depth := f.node, f.depth

		hasSections := n.IsFile() && len(n.Sections) > 0
		hasChildren := n.IsFolder() && len(n.Children) > 0
		hasEnvs := n.Environments != nil

		rows = append(rows, Row{
			Kind:         RowItem,
			Depth:        depth,
			Title:        n.Title,
			Node:         n,
			Environments: n.Environments,
			HasChildren:  (n.IsFolder() && (hasChildren || hasEnvs)) || hasSections,
		})
		if collapsed(n) {
			continue
		}

		if hasSections {
			for _, s := range n.Sections {
				rows = append(rows, Row{Kind: RowSection, Depth: depth, Title: s.Name, Node: n, Section: s})
			}
			if hasEnvs || hasChildren {
				rows = append(rows, Row{Kind: RowSpacer, Depth: depth})
			}
		}
		if hasEnvs {
			rows = append(rows, Row{Kind: RowEnvironments, Depth: depth + 1, Title: EnvironmentsTitle, Environments: n.Environments})
		}
		if hasChildren {
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{n.Children[i], depth + 1})
			}
		}
	}
	return rows
}

// DisplayName is the title shown for a section: its name, else its URL.
func DisplayName(s *parser.Section) string {
	if s == nil {
		return UntitledName
	}
	if s.Name != "" {
		return s.Name
	}
	if s.URL != "" {
		return s.URL
	}
	return UntitledName
}

// FormatVerb abbreviates a verb to at most four characters.
func FormatVerb(verb string) string {
	upper := strings.ToUpper(verb)
	switch upper {
	case "PATCH":
		return "PTCH"
	case "DELETE":
		return "DEL"
	case "OPTIONS":
		return "OPT"
	}
	if len(upper) > 4 {
		return upper[:4]
	}
	return upper
}
