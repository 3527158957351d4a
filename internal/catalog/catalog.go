// Package catalog caches a scanned archive's FileEntry index in a local
// sqlite database, keyed on a siphash of the archive's path and size so a
// repeat scan of an unchanged archive can skip re-parsing its index.
package catalog

import (
	"database/sql"
	"fmt"

	"github.com/dchest/siphash"
	_ "modernc.org/sqlite"

	"github.com/ernie/ggtools/internal/game"
	"github.com/ernie/ggtools/internal/pack"
)

// siphashKey is a fixed key for the content-addressing hash below; it only
// needs to be stable across runs of this tool, not secret.
var siphashKey = [16]byte{0x67, 0x67, 0x74, 0x6f, 0x6f, 0x6c, 0x63, 0x61, 0x74, 0x61, 0x6c, 0x6f, 0x67, 0x76, 0x31, 0x00}

// Catalog is a cache of previously scanned archive indexes.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS archives (
	key INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	game INTEGER NOT NULL,
	guid TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	archive_key INTEGER NOT NULL,
	filename TEXT NOT NULL,
	offset INTEGER NOT NULL,
	size INTEGER NOT NULL,
	FOREIGN KEY (archive_key) REFERENCES archives(key)
);
CREATE INDEX IF NOT EXISTS idx_entries_archive ON entries(archive_key);
`

// Key derives the cache key for an archive from its path and size, so a
// changed-in-place archive (same path, different size) doesn't hit a stale
// cache entry.
func Key(path string, size int64) int64 {
	h := siphash.New(siphashKey[:])
	h.Write([]byte(path))
	var sizeBytes [8]byte
	for i := range sizeBytes {
		sizeBytes[i] = byte(size >> (8 * i))
	}
	h.Write(sizeBytes[:])
	return int64(h.Sum64())
}

// Put stores an archive's scanned index, replacing any prior entry under
// the same key.
func (c *Catalog) Put(key int64, path string, g game.Game, guid string, entries []pack.FileEntry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries WHERE archive_key = ?`, key); err != nil {
		return fmt.Errorf("clear stale entries: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO archives (key, path, game, guid) VALUES (?, ?, ?, ?)`,
		key, path, int(g), guid); err != nil {
		return fmt.Errorf("upsert archive row: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO entries (archive_key, filename, offset, size) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.Exec(key, e.Filename, e.Offset, e.Size); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.Filename, err)
		}
	}
	return tx.Commit()
}

// Get returns a previously cached index for key, or ok=false if nothing is
// cached under it.
func (c *Catalog) Get(key int64) (g game.Game, guid string, entries []pack.FileEntry, ok bool, err error) {
	var path string
	var gameInt int
	row := c.db.QueryRow(`SELECT path, game, guid FROM archives WHERE key = ?`, key)
	switch err = row.Scan(&path, &gameInt, &guid); err {
	case sql.ErrNoRows:
		return 0, "", nil, false, nil
	case nil:
	default:
		return 0, "", nil, false, fmt.Errorf("lookup archive row: %w", err)
	}
	g = game.Game(gameInt)

	rows, err := c.db.Query(`SELECT filename, offset, size FROM entries WHERE archive_key = ?`, key)
	if err != nil {
		return 0, "", nil, false, fmt.Errorf("lookup entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e pack.FileEntry
		if err := rows.Scan(&e.Filename, &e.Offset, &e.Size); err != nil {
			return 0, "", nil, false, fmt.Errorf("scan entry row: %w", err)
		}
		e.PackPath = path
		e.Game = g
		entries = append(entries, e)
	}
	return g, guid, entries, true, rows.Err()
}
