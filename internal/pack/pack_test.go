package pack

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ernie/ggtools/internal/game"
)

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "Weird.ggpack1")

	files := []BuildInput{
		{Filename: "a.txt", Data: []byte("hi")},
		{Filename: "b.bin", Data: make([]byte, 16)},
	}
	if err := Build(files, out, game.ReturnToMonkeyIsland); err != nil {
		t.Fatal(err)
	}

	a, err := Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if len(a.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(a.Entries))
	}
	byName := map[string]FileEntry{}
	for _, e := range a.Entries {
		byName[e.Filename] = e
		if e.Offset+e.Size > int64(fileSize(t, out)) {
			t.Fatalf("entry %q exceeds archive length", e.Filename)
		}
	}

	got, err := a.Extract(byName["a.txt"])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("hi")) {
		t.Fatalf("extract a.txt = %q, want \"hi\"", got)
	}

	got2, err := a.Extract(byName["b.bin"])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got2, make([]byte, 16)) {
		t.Fatalf("extract b.bin mismatch")
	}
}

func TestFileEntryExtension(t *testing.T) {
	cases := map[string]string{
		"foo.strings.bank": ".strings.bank",
		"foo.assets.bank":  ".assets.bank",
		"noext":            "",
		"a.dink":           ".dink",
	}
	for name, want := range cases {
		e := FileEntry{Filename: name}
		if got := e.Extension(); got != want {
			t.Errorf("Extension(%q) = %q, want %q", name, got, want)
		}
	}
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return fi.Size()
}
