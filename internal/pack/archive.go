package pack

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/ernie/ggtools/internal/cipher"
	"github.com/ernie/ggtools/internal/game"
	"github.com/ernie/ggtools/internal/ggerr"
	"github.com/ernie/ggtools/internal/valuetree"
)

// ObservedGUID is the guid value seen in every shipped archive's index;
// newly built archives reuse it by default.
const ObservedGUID = "b554baf88ff004c50cc0214575794b8c"

// Archive is an opened, memory-mapped content archive. Archives are
// typically under 2 GiB, so mapping them read-only and handing out slices
// to the cipher/ValueTree/bytecode layers avoids an owned copy per entry.
type Archive struct {
	path    string
	file    *os.File
	region  mmap.MMap
	Game    game.Game
	Entries []FileEntry
	GUID    string
}

// Open reads an archive's header and index, returning one FileEntry per
// indexed file. The archive stays memory-mapped until Close.
func Open(path string) (*Archive, error) {
	g := game.FromArchiveBasename(filepath.Base(path))
	if g == game.Unknown {
		return nil, &ggerr.UnknownGame{ArchivePath: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ggerr.Io{Path: path, Cause: err}
	}
	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, &ggerr.Io{Path: path, Cause: err}
	}

	a := &Archive{path: path, file: f, region: region, Game: g}
	if err := a.parseIndex(); err != nil {
		region.Unmap()
		f.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) parseIndex() error {
	if len(a.region) < 8 {
		return &ggerr.MalformedHeader{Offset: 0, Expected: "8-byte archive header", Actual: fmt.Sprintf("%d bytes total", len(a.region))}
	}
	dataOffset := binary.LittleEndian.Uint32(a.region[0:4])
	dataSize := binary.LittleEndian.Uint32(a.region[4:8])
	end := int64(dataOffset) + int64(dataSize)
	if end > int64(len(a.region)) {
		return &ggerr.MalformedHeader{Offset: 0, Expected: "index within file bounds", Actual: fmt.Sprintf("offset=%d size=%d filelen=%d", dataOffset, dataSize, len(a.region))}
	}
	ciphered := a.region[dataOffset:end]
	deciphered, err := cipher.Decode(ciphered, a.Game, -1)
	if err != nil {
		return fmt.Errorf("pack: decoding index: %w", err)
	}
	tree, err := valuetree.Read(deciphered, a.Game)
	if err != nil {
		return fmt.Errorf("pack: parsing index: %w", err)
	}
	if tree.Kind != valuetree.KindDict {
		return &ggerr.MalformedTree{Reason: "archive index root is not a dict"}
	}
	if guid, ok := tree.Dict.Get("guid"); ok {
		a.GUID = guid.Text
	}
	filesNode, ok := tree.Dict.Get("files")
	if !ok || filesNode.Kind != valuetree.KindArray {
		return &ggerr.MalformedTree{Reason: "archive index missing \"files\" array"}
	}
	entries := make([]FileEntry, 0, len(filesNode.Array))
	for _, fn := range filesNode.Array {
		if fn.Kind != valuetree.KindDict {
			return &ggerr.MalformedTree{Reason: "archive index file entry is not a dict"}
		}
		name, _ := fn.Dict.Get("filename")
		offset, _ := fn.Dict.Get("offset")
		size, _ := fn.Dict.Get("size")
		if name == nil || offset == nil || size == nil {
			return &ggerr.MalformedTree{Reason: "archive index file entry missing filename/offset/size"}
		}
		off, err := strconv.ParseInt(offset.Text, 10, 64)
		if err != nil {
			return &ggerr.MalformedTree{Reason: "archive index entry offset is not an integer"}
		}
		sz, err := strconv.ParseInt(size.Text, 10, 64)
		if err != nil {
			return &ggerr.MalformedTree{Reason: "archive index entry size is not an integer"}
		}
		if off+sz > int64(len(a.region)) {
			return &ggerr.MalformedTree{Reason: fmt.Sprintf("entry %q extends past end of archive", name.Text)}
		}
		entries = append(entries, FileEntry{
			Filename: name.Text,
			Offset:   off,
			Size:     sz,
			PackPath: a.path,
			Game:     a.Game,
		})
	}
	a.Entries = entries
	return nil
}

// Extract reads and deciphers one entry's bytes. Sound banks
// (.assets.bank) are stored unciphered and are returned as-is.
func (a *Archive) Extract(e FileEntry) ([]byte, error) {
	if e.Offset+e.Size > int64(len(a.region)) {
		return nil, &ggerr.MalformedTree{Reason: fmt.Sprintf("entry %q out of bounds", e.Filename)}
	}
	raw := a.region[e.Offset : e.Offset+e.Size]
	if e.Extension() == ".assets.bank" {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	return cipher.Decode(raw, a.Game, -1)
}

// Close unmaps and closes the underlying file. Safe to call once; callers
// MUST call it on every exit path.
func (a *Archive) Close() error {
	var errs []error
	if a.region != nil {
		if err := a.region.Unmap(); err != nil {
			errs = append(errs, err)
		}
		a.region = nil
	}
	if a.file != nil {
		if err := a.file.Close(); err != nil {
			errs = append(errs, err)
		}
		a.file = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("pack: closing %s: %v", a.path, errs)
	}
	return nil
}
