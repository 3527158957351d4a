package pack

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ernie/ggtools/internal/cipher"
	"github.com/ernie/ggtools/internal/game"
	"github.com/ernie/ggtools/internal/valuetree"
)

// BuildInput is one file to pack: its archive-relative name and plaintext
// contents.
type BuildInput struct {
	Filename string
	Data     []byte
}

// BuildOptions configures Build via functional options, in the style the
// rest of this module (the worker pool's Option, in particular) uses for
// optional construction parameters.
type BuildOptions struct {
	guid string
}

// BuildOption mutates BuildOptions.
type BuildOption func(*BuildOptions)

// WithNewGUID generates a fresh random archive GUID instead of reusing the
// constant value observed in shipped archives.
func WithNewGUID() BuildOption {
	return func(o *BuildOptions) {
		o.guid = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
}

// Build serialises files into a new archive at outPath for game g. Each
// file is ciphered (or passed through unciphered for .assets.bank), the
// index dict is built and ValueTree-serialised, and the whole thing is
// written as header + payload + ciphered index.
func Build(files []BuildInput, outPath string, g game.Game, opts ...BuildOption) error {
	o := BuildOptions{guid: ObservedGUID}
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	entries := make([]fileEntryOffsets, 0, len(files))
	for _, in := range files {
		var encoded []byte
		if (FileEntry{Filename: in.Filename}).Extension() == ".assets.bank" {
			encoded = in.Data
		} else {
			var err error
			encoded, err = cipher.Encode(in.Data, g)
			if err != nil {
				return fmt.Errorf("pack: encoding %q: %w", in.Filename, err)
			}
		}
		entries = append(entries, fileEntryOffsets{
			filename: in.Filename,
			offset:   8 + int64(len(payload)),
			size:     int64(len(in.Data)),
		})
		payload = append(payload, encoded...)
	}

	indexTree := buildIndexTree(entries, o.guid)
	indexBytes, err := valuetree.Write(indexTree, g)
	if err != nil {
		return fmt.Errorf("pack: serialising index: %w", err)
	}
	cipheredIndex, err := cipher.Encode(indexBytes, g)
	if err != nil {
		return fmt.Errorf("pack: encoding index: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("pack: creating %s: %w", outPath, err)
	}
	defer out.Close()

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(8+len(payload)))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(cipheredIndex)))
	if _, err := out.Write(header[:]); err != nil {
		return err
	}
	if _, err := out.Write(payload); err != nil {
		return err
	}
	if _, err := out.Write(cipheredIndex); err != nil {
		return err
	}
	return nil
}

type fileEntryOffsets struct {
	filename string
	offset   int64
	size     int64
}

func buildIndexTree(entries []fileEntryOffsets, guid string) *valuetree.Node {
	files := make([]*valuetree.Node, 0, len(entries))
	for _, e := range entries {
		d := valuetree.NewDict()
		d.Set("filename", valuetree.String(e.filename))
		d.Set("offset", valuetree.Int(strconv.FormatInt(e.offset, 10)))
		d.Set("size", valuetree.Int(strconv.FormatInt(e.size, 10)))
		files = append(files, valuetree.DictNode(d))
	}
	// Key order matches GGPackParser.createPackFile's
	// {"files": [...], "guid": ...} dict literal, since ValueTree is
	// self-describing and order-preserving: reversing it would still
	// parse but wouldn't repack byte-identically against the original
	// tools.
	root := valuetree.NewDict()
	root.Set("files", valuetree.Arr(files))
	root.Set("guid", valuetree.String(guid))
	return valuetree.DictNode(root)
}
