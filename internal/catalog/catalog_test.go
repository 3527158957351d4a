package catalog

import (
	"path/filepath"
	"testing"

	"github.com/ernie/ggtools/internal/game"
	"github.com/ernie/ggtools/internal/pack"
)

func TestPutAndGetRoundTrip(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := Key("Weird.ggpack1", 4096)
	entries := []pack.FileEntry{
		{Filename: "a.wimpy", Offset: 8, Size: 100},
		{Filename: "b.dink", Offset: 108, Size: 50},
	}
	if err := c.Put(key, "Weird.ggpack1", game.ReturnToMonkeyIsland, "deadbeef", entries); err != nil {
		t.Fatal(err)
	}

	g, guid, got, ok, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if g != game.ReturnToMonkeyIsland || guid != "deadbeef" || len(got) != 2 {
		t.Fatalf("unexpected cached row: game=%v guid=%v entries=%+v", g, guid, got)
	}
}

func TestGetMissReturnsOkFalse(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	_, _, _, ok, err := c.Get(Key("nothing.ggpack1", 1))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected cache miss")
	}
}

func TestKeyDiffersOnSize(t *testing.T) {
	a := Key("same.ggpack1", 100)
	b := Key("same.ggpack1", 200)
	if a == b {
		t.Fatal("expected different sizes to hash to different keys")
	}
}
