// File: pkg/combine/tree.go
package combine

import (
	"sort"
	"strings"
)

type treeNode struct {
	children map[string]*treeNode
}

func (n *treeNode) isDir() bool {
	return len(n.children) > 0
}

// GenerateTree renders '/'-separated relative paths as an indented tree.
// At each level directories come first, then files, each group sorted
// case-insensitively; directories carry a trailing '/'.
func GenerateTree(relPaths []string) string {
	root := &treeNode{children: map[string]*treeNode{}}
	for _, relPath := range relPaths {
		current := root
		for _, part := range strings.Split(relPath, "/") {
			if part == "" {
				continue
			}
			next, ok := current.children[part]
			if !ok {
				next = &treeNode{children: map[string]*treeNode{}}
				current.children[part] = next
			}
			current = next
		}
	}

	var lines []string
	generateTreeRecursively(root, "", &lines)
	return strings.Join(lines, "\n")
}

// generateTreeRecursively appends the lines for node's children.
func generateTreeRecursively(node *treeNode, prefix string, lines *[]string) {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}

	// Sort entries: directories first, then files, alphabetically
	sort.Slice(names, func(i, j int) bool {
		di, dj := node.children[names[i]].isDir(), node.children[names[j]].isDir()
		if di != dj {
			return di
		}
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})

	for i, name := range names {
		child := node.children[name]
		connector := "├── "
		extension := "│   "
		if i == len(names)-1 {
			connector = "└── "
			extension = "    "
		}

		if child.isDir() {
			*lines = append(*lines, prefix+connector+name+"/")
			generateTreeRecursively(child, prefix+extension, lines)
		} else {
			*lines = append(*lines, prefix+connector+name)
		}
	}
}
