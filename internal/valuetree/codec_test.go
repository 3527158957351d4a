package valuetree

import (
	"bytes"
	"testing"

	"github.com/ernie/ggtools/internal/game"
)

func TestMinimalRtmiTree(t *testing.T) {
	d := NewDict()
	d.Set("k", Int("42"))
	root := DictNode(d)

	encoded, err := Write(root, game.ReturnToMonkeyIsland)
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x01, 0x02, 0x03, 0x04, // header
		0x01, 0x00, 0x00, 0x00, // version
	}
	if !bytes.Equal(encoded[:8], want) {
		t.Fatalf("header mismatch: % x", encoded[:8])
	}
	if encoded[12] != tagDict {
		t.Fatalf("expected dict tag at offset 12, got 0x%02X", encoded[12])
	}

	decoded, err := Read(encoded, game.ReturnToMonkeyIsland)
	if err != nil {
		t.Fatalf("round-trip read: %v", err)
	}
	v, ok := decoded.Dict.Get("k")
	if !ok || v.Kind != KindInt || v.Text != "42" {
		t.Fatalf("decoded dict mismatch: %+v", decoded.Dict.Entries)
	}

	reencoded, err := Write(decoded, game.ReturnToMonkeyIsland)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Fatalf("re-encode not byte-identical:\n got  % x\n want % x", reencoded, encoded)
	}
}

func TestStringRefWidthMismatchFails(t *testing.T) {
	d := NewDict()
	d.Set("key", String("value"))
	encoded, err := Write(DictNode(d), game.ReturnToMonkeyIsland)
	if err != nil {
		t.Fatal(err)
	}
	// Parsing a u16-width tree as u32 should misinterpret structure and fail.
	if _, err := Read(encoded, game.ThimbleweedPark); err == nil {
		t.Fatal("expected parse failure under wrong stringRef width")
	}
}

func TestDuplicateDictKeyLastWriteWins(t *testing.T) {
	d := NewDict()
	d.Set("a", Int("1"))
	d.Set("a", Int("2"))
	if len(d.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(d.Entries))
	}
	if d.Entries[0].Value.Text != "2" {
		t.Fatalf("expected last-write-wins value 2, got %s", d.Entries[0].Value.Text)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	arr := Arr([]*Node{String("a"), String("b"), Null()})
	encoded, err := Write(arr, game.Delores)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Read(encoded, game.Delores)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Array) != 3 || decoded.Array[2].Kind != KindNull {
		t.Fatalf("array round-trip mismatch: %+v", decoded.Array)
	}
}
