package payload

import (
	"encoding/binary"
	"testing"

	"github.com/ernie/ggtools/internal/bytecode"
	"github.com/ernie/ggtools/internal/cipher"
	"github.com/ernie/ggtools/internal/game"
	"github.com/ernie/ggtools/internal/pack"
)

func TestConvertUtf8TextExtensions(t *testing.T) {
	e := pack.FileEntry{Filename: "notes.txt", Game: game.ThimbleweedPark}
	p, err := Convert(e, []byte("hello there"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != Utf8Text || p.Text != "hello there" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestConvertUnknownExtensionFallsBackToRaw(t *testing.T) {
	e := pack.FileEntry{Filename: "mystery.xyz", Game: game.ThimbleweedPark}
	p, err := Convert(e, []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != RawBytes || len(p.Raw) != 3 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestConvertSniffsJSONVsText(t *testing.T) {
	e := pack.FileEntry{Filename: "thing.wimpy", Game: game.Delores}
	p, err := Convert(e, []byte(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != Json {
		t.Fatalf("expected Json, got %v", p.Kind)
	}

	p2, err := Convert(e, []byte("plain text wimpy body"))
	if err != nil {
		t.Fatal(err)
	}
	if p2.Kind != Utf8Text {
		t.Fatalf("expected Utf8Text, got %v", p2.Kind)
	}
}

func TestConvertSniffsValueTree(t *testing.T) {
	tree := []byte{0x01, 0x02, 0x03, 0x04, 0, 0, 0, 0}
	e := pack.FileEntry{Filename: "thing.emitter", Game: game.ReturnToMonkeyIsland}
	_, err := Convert(e, tree)
	// Expected to fail parsing past the header since this isn't a full tree,
	// but it must route through the ValueTree branch, not fall back to text.
	if err == nil {
		t.Fatal("expected a malformed-tree error from a truncated ValueTree sniff, got nil")
	}
}

func TestConvertTSV(t *testing.T) {
	e := pack.FileEntry{Filename: "strings.tsv", Game: game.ThimbleweedPark}
	p, err := Convert(e, []byte("a\tb\tc\n1\t2\t3"))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Rows) != 2 || len(p.Rows[0]) != 3 {
		t.Fatalf("unexpected rows: %+v", p.Rows)
	}
}

func TestConvertBnutAppliesRollingCipher(t *testing.T) {
	plain := []byte("function onEnter() {}")
	keyOffset := len(plain) & 0xFF
	encoded := cipher.DecodeBnutKey(plain, keyOffset)

	e := pack.FileEntry{Filename: "script.bnut", Game: game.ReturnToMonkeyIsland}
	p, err := Convert(e, encoded)
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != Utf8Text || p.Text != string(plain) {
		t.Fatalf("expected round-tripped bnut text, got %+v", p)
	}
}

func TestConvertDinkRoutesToBytecode(t *testing.T) {
	f := &bytecode.Function{
		UID:       "uid-1",
		Name:      "onEnter",
		Strings:   map[uint32]string{0: "ping"},
		Constants: []bytecode.Constant{{Kind: bytecode.ConstString, String: "ping"}},
		Lines:     []bytecode.LineRange{{LineNumber: 1, StartIndex: 0, EndIndex: 0}},
	}
	raw := bytecode.EmitFunction(f)

	e := pack.FileEntry{Filename: "MainScript.dink", Game: game.ReturnToMonkeyIsland}
	p, err := Convert(e, raw)
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != Bytecode || len(p.Scripts) != 1 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestConvertYackRoutesToDialogueForRTMI(t *testing.T) {
	decoded := buildMinimalYack()
	filename := "Carla.yack"
	encoded := cipher.DecodeDialogueKey(decoded, len(filename)-len(".yack"))

	e := pack.FileEntry{Filename: filename, Game: game.ReturnToMonkeyIsland}
	p, err := Convert(e, encoded)
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != Dialogue || len(p.Yack) != 1 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestConvertYackFallsBackToTextForDelores(t *testing.T) {
	e := pack.FileEntry{Filename: "Carla.yack", Game: game.Delores}
	p, err := Convert(e, []byte("raw delores yack bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != Utf8Text {
		t.Fatalf("expected Utf8Text for Delores .yack, got %v", p.Kind)
	}
}

func TestConvertAssetsBankAppliesSoundBankCipher(t *testing.T) {
	e := pack.FileEntry{Filename: "voice.assets.bank", Game: game.ReturnToMonkeyIsland}
	p, err := Convert(e, make([]byte, 32))
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != SoundBank || len(p.Raw) != 32 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func buildMinimalYack() []byte {
	stmt := []byte{1} // ACTOR_SAY
	stmt = append(stmt, le32(3)...) // line number
	stmt = append(stmt, le32(0)...) // reserved
	stmt = append(stmt, 0)          // extraArgCount -> 2 total args
	stmt = append(stmt, le32(0)...)
	stmt = append(stmt, le32(uint32(int32(-1)))...)
	stmt = append(stmt, 0) // END_PROGRAM

	stringListOffset := 8 + len(stmt)

	strs := le32(1120122089)
	strs = append(strs, le32(1)...)
	strs = append(strs, []byte("Hello")...)
	strs = append(strs, 0)

	out := []byte{0x00, 0x78, 0xE6, 0xDC}
	out = append(out, le32(uint32(stringListOffset))...)
	out = append(out, stmt...)
	out = append(out, strs...)
	return out
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
