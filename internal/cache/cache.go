// Package cache remembers files that scanned clean so unchanged files can be
// skipped on the next run with the same configuration.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
)

// DB maps a repository-relative path to the fingerprint of content and
// configuration it last scanned clean with.
type DB struct {
	Entries map[string]string `json:"entries"`
}

// FileName is the cache file written at the root of directories without
// a .git directory.
const FileName = ".securegitcache.json"

func defaultPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "securegitcache.json")
	}
	return filepath.Join(root, FileName)
}

// Load reads the cache for root. A missing or corrupt cache yields an empty
// DB and the error.
func Load(root string) (DB, error) {
	var db DB
	b, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if err := json.Unmarshal(b, &db); err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	return db, nil
}

// Save writes db for root.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0644)
}

// Clean reports whether path last scanned clean with the given fingerprint.
func (db DB) Clean(path, fingerprint string) bool {
	return db.Entries != nil && db.Entries[path] == fingerprint
}

// Fingerprint hashes content together with a configuration fingerprint.
func Fingerprint(config string, content []byte) string {
	d := xxhash.New()
	_, _ = d.WriteString(config)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(content)
	return hex16(d.Sum64())
}

// Hash returns the 16-hex-digit xxhash of b.
func Hash(b []byte) string {
	return hex16(xxhash.Sum64(b))
}

func hex16(sum uint64) string {
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
