package gorgzorg

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// Item is one unit fed into the protocol: a directory to be announced or a
// regular file to be streamed. Path is the logical, slash-separated path
// exactly as it appears relative to the sender's invocation.
type Item struct {
	Path string
	Dir  bool
	Size int64
}

// Enumerate walks root depth-first and produces the ordered item sequence
// for a directory send. Subdirectories are emitted before their contents;
// the root itself is not emitted (the sender announces it separately as the
// walk-root marker). An optional glob pattern filters files by base name;
// a directory survives the filter only while a matching file remains
// somewhere below it, so the receiver never materializes empty subtrees.
//
// Order is the lexical order of filepath.WalkDir, so it is deterministic on
// every platform. The receiver does not depend on it, but tests may pin it.
func Enumerate(root string, pattern string) ([]Item, error) {
	var filter glob.Glob
	if pattern != "" {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, WrapErr(ErrInvalidArgs, err, "bad glob pattern "+pattern)
		}
		filter = g
	}

	var items []Item
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		if d.IsDir() {
			items = append(items, Item{Path: filepath.ToSlash(p), Dir: true})
			return nil
		}

		if filter != nil && !filter.Match(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		items = append(items, Item{Path: filepath.ToSlash(p), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}

	if filter != nil {
		items = pruneUnmatchedDirs(items)
	}
	return items, nil
}

// pruneUnmatchedDirs drops directories with no surviving file anywhere below
// them. Items arrive in walk order, so everything under a directory follows
// it; deciding inner directories first lets an outer one inherit their fate.
func pruneUnmatchedDirs(items []Item) []Item {
	keep := make([]bool, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		if !items[i].Dir {
			keep[i] = true
			continue
		}
		prefix := items[i].Path + "/"
		for j := i + 1; j < len(items); j++ {
			if keep[j] && strings.HasPrefix(items[j].Path, prefix) {
				keep[i] = true
				break
			}
		}
	}

	kept := items[:0]
	for i, item := range items {
		if keep[i] {
			kept = append(kept, item)
		}
	}
	return kept
}
