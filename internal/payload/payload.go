// Package payload dispatches an extracted entry's bytes to a converter
// keyed on filename extension and originating game, as the last stage of
// the archive -> entry -> payload pipeline.
package payload

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/ernie/ggtools/internal/bytecode"
	"github.com/ernie/ggtools/internal/cipher"
	"github.com/ernie/ggtools/internal/dialogue"
	"github.com/ernie/ggtools/internal/game"
	"github.com/ernie/ggtools/internal/pack"
	"github.com/ernie/ggtools/internal/valuetree"
)

// Kind tags which converter produced a Payload.
type Kind int

const (
	RawBytes Kind = iota
	Utf8Text
	Json
	ValueTree
	Table
	Image
	SoundBank
	Sound
	Bytecode
	Dialogue
)

// Payload is the tagged result of converting one entry's extracted bytes.
type Payload struct {
	Kind Kind

	Raw      []byte
	Text     string
	JSON     any
	Tree     *valuetree.Node
	Rows     [][]string
	Scripts  []*bytecode.Script
	Yack     []dialogue.Statement
	ImageRaw []byte // external-adapter stub: unwrapped but undecoded bytes
}

// Convert selects and applies the converter for e's extension, consulting
// the first bytes of data to disambiguate extensions whose format isn't
// determined by extension alone. Unknown extensions fall through to
// RawBytes; this function does not itself apply the archive cipher — data
// must already be the post-cipher extracted bytes (pack.Archive.Extract's
// return value).
func Convert(e pack.FileEntry, data []byte) (Payload, error) {
	ext := e.Extension()
	switch ext {
	case ".atlas", ".attach", ".blend", ".byack", ".dinky", ".fnt", ".lip", ".nut", ".txt":
		return Payload{Kind: Utf8Text, Text: string(data)}, nil

	case ".anim":
		return convertJSON(data)

	case ".emitter", ".json", ".wimpy":
		return sniff(data, e.Game)

	case ".dink":
		scripts, err := bytecode.Parse(data, e.Game)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Kind: Bytecode, Scripts: scripts}, nil

	case ".bnut":
		decoded := cipher.DecodeBnutKey(data, len(data)&0xFF)
		return Payload{Kind: Utf8Text, Text: string(decoded)}, nil

	case ".yack":
		if e.Game == game.ReturnToMonkeyIsland {
			statements, err := dialogue.Decode(data, e.Filename)
			if err != nil {
				return Payload{}, err
			}
			return Payload{Kind: Dialogue, Yack: statements}, nil
		}
		return Payload{Kind: Utf8Text, Text: string(data)}, nil

	case ".ktx":
		return Payload{Kind: Image, ImageRaw: data}, nil

	case ".ktxbz":
		unwrapped, err := unwrapZlib(data)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Kind: Image, ImageRaw: unwrapped}, nil

	case ".png":
		return Payload{Kind: Image, ImageRaw: data}, nil

	case ".tsv":
		return Payload{Kind: Table, Rows: parseTSV(data)}, nil

	case ".otf", ".ttf":
		return Payload{Kind: RawBytes, Raw: data}, nil

	case ".ogg", ".wav":
		return Payload{Kind: Sound, Raw: data}, nil

	case ".assets.bank":
		decoded := cipher.DecodeSoundBank(data)
		return Payload{Kind: SoundBank, Raw: decoded}, nil

	default:
		return Payload{Kind: RawBytes, Raw: data}, nil
	}
}

func sniff(data []byte, g game.Game) (Payload, error) {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x01, 0x02, 0x03, 0x04}):
		tree, err := valuetree.Read(data, g)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Kind: ValueTree, Tree: tree}, nil
	case len(data) > 0 && data[0] == '{':
		return convertJSON(data)
	default:
		return Payload{Kind: Utf8Text, Text: string(data)}, nil
	}
}

func convertJSON(data []byte) (Payload, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		// Fall back to text rather than abort the whole entry — matches
		// the container layer's "never abort on one malformed record"
		// philosophy carried down into the dispatcher.
		return Payload{Kind: Utf8Text, Text: string(data)}, nil
	}
	return Payload{Kind: Json, JSON: v}, nil
}

func parseTSV(data []byte) [][]string {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = strings.Split(line, "\t")
	}
	return rows
}

func unwrapZlib(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		// Not actually zlib-wrapped; hand back the raw bytes for the
		// (out of scope) external KTX decoder to sort out.
		return data, nil
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
