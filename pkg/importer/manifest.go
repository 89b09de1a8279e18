package importer

import (
	"sort"
	"strings"

	"github.com/snapfs/snapfs/pkg/object"
)

// Assembler accumulates per-path manifest entries into a
// content-addressed directory tree. Entries may arrive in any order;
// the root hash depends only on the final entry set.
//
// An Assembler is single-use: after Finish its state is discarded.
type Assembler struct {
	dirs map[object.RelativePath]*object.TreeObj
}

// NewAssembler creates an Assembler holding an empty root directory.
func NewAssembler() *Assembler {
	return &Assembler{
		dirs: map[object.RelativePath]*object.TreeObj{
			"": {},
		},
	}
}

// ProcessEntry registers entry under the directory dir, creating dir
// and any missing ancestors.
func (a *Assembler) ProcessEntry(dir object.RelativePath, entry object.TreeEntry) {
	a.ensureDir(dir)
	tree := a.dirs[dir]
	tree.Entries = append(tree.Entries, entry)
}

func (a *Assembler) ensureDir(dir object.RelativePath) {
	for {
		if _, ok := a.dirs[dir]; ok {
			return
		}
		a.dirs[dir] = &object.TreeObj{}
		if dir.IsEmpty() {
			return
		}
		dir = dir.Dirname()
	}
}

// Finish hashes every directory deepest-first, records a synthetic
// directory entry in each parent, and returns the root identity.
func (a *Assembler) Finish() object.Hash {
	paths := make([]object.RelativePath, 0, len(a.dirs))
	for p := range a.dirs {
		paths = append(paths, p)
	}
	// Deepest directories first; siblings in bytewise path order.
	sort.Slice(paths, func(i, j int) bool {
		di := strings.Count(string(paths[i]), "/")
		dj := strings.Count(string(paths[j]), "/")
		if paths[i].IsEmpty() != paths[j].IsEmpty() {
			return paths[j].IsEmpty()
		}
		if di != dj {
			return di > dj
		}
		return paths[i] < paths[j]
	})

	var root object.Hash
	for _, p := range paths {
		tree := a.dirs[p]
		h := object.HashTree(tree)
		if p.IsEmpty() {
			root = h
			break
		}
		parent, base := p.Split()
		a.ensureDir(parent)
		a.dirs[parent].Entries = append(a.dirs[parent].Entries, object.TreeEntry{
			Hash:  h,
			Name:  base,
			Type:  object.EntryDirectory,
			Perms: object.PermsAll,
		})
	}

	a.dirs = nil
	return root
}
