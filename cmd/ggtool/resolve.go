package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ernie/ggtools/internal/pack"
	"github.com/ernie/ggtools/internal/payload"
	"github.com/ernie/ggtools/internal/valuetree"
)

// knownExtensions is the set of extensions resolve() will chase a string
// leaf into, so it doesn't treat every quoted string in a dict as a file
// reference.
var knownExtensions = map[string]bool{
	".wimpy": true, ".emitter": true, ".dink": true, ".yack": true,
	".nut": true, ".bnut": true, ".png": true, ".ktx": true, ".ktxbz": true,
	".ogg": true, ".wav": true, ".fnt": true, ".tsv": true,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <archive> <entry>",
	Short: "Walk a ValueTree entry's string leaves to find the other entries it references",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ar, err := pack.Open(args[0])
		if err != nil {
			return err
		}
		defer ar.Close()

		byName := make(map[string]pack.FileEntry, len(ar.Entries))
		for _, e := range ar.Entries {
			byName[e.Filename] = e
		}

		root, ok := byName[args[1]]
		if !ok {
			return fmt.Errorf("resolve: %q not found in archive", args[1])
		}

		needed := make(map[string]bool)
		seen := make(map[string]bool)
		if err := walk(ar, root, byName, needed, seen); err != nil {
			return err
		}

		names := make([]string, 0, len(needed))
		for name := range needed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

// walk resolves one entry's dependency set by decoding it and, if it's a
// ValueTree, recursing into every string leaf that names another archive
// entry — the same "start from one file, chase its references, build up a
// needed set" idiom used to assemble per-map asset bundles, generalized
// from files-needed-by-a-map to files-referenced-by-a-dict.
func walk(ar *pack.Archive, e pack.FileEntry, byName map[string]pack.FileEntry, needed, seen map[string]bool) error {
	if seen[e.Filename] {
		return nil
	}
	seen[e.Filename] = true

	raw, err := ar.Extract(e)
	if err != nil {
		return fmt.Errorf("extract %s: %w", e.Filename, err)
	}
	p, err := payload.Convert(e, raw)
	if err != nil {
		return fmt.Errorf("convert %s: %w", e.Filename, err)
	}
	if p.Kind != payload.ValueTree {
		return nil
	}

	refs := map[string]bool{}
	collectStringRefs(p.Tree, refs)
	for ref := range refs {
		if needed[ref] {
			continue
		}
		target, ok := byName[ref]
		if !ok {
			continue
		}
		needed[ref] = true
		if err := walk(ar, target, byName, needed, seen); err != nil {
			return err
		}
	}
	return nil
}

func collectStringRefs(n *valuetree.Node, refs map[string]bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case valuetree.KindString:
		if ext := extensionOf(n.Text); knownExtensions[ext] {
			refs[n.Text] = true
		}
	case valuetree.KindDict:
		for _, entry := range n.Dict.Entries {
			collectStringRefs(entry.Value, refs)
		}
	case valuetree.KindArray:
		for _, item := range n.Array {
			collectStringRefs(item, refs)
		}
	}
}

func extensionOf(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i:]
	}
	return ""
}
