package translate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gamestringer/textenc"
)

// Cache file layout, little-endian:
//
//	u32 magic "GSTC"  u32 version  u32 count
//	count × { u32 origLen, origLen UTF-16 units,
//	          u32 transLen, transLen UTF-16 units }
const (
	cacheMagic   uint32 = 0x47535443
	cacheVersion uint32 = 1
)

// ErrCacheFileInvalid marks a cache file with a bad magic or version;
// callers treat the cache as absent.
var ErrCacheFileInvalid = errors.New("invalid cache file")

// Save writes the cache to path. The file is written to a sibling temp
// file and renamed so readers never observe a half-written cache.
func (c *Cache) Save(path string) error {
	if path == "" {
		return fmt.Errorf("empty cache path")
	}

	var buf bytes.Buffer
	pairs := c.snapshot()

	binary.Write(&buf, binary.LittleEndian, cacheMagic)
	binary.Write(&buf, binary.LittleEndian, cacheVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(len(pairs)))

	for _, pair := range pairs {
		if err := writeUTF16Field(&buf, pair.original); err != nil {
			return err
		}
		if err := writeUTF16Field(&buf, pair.translated); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load replaces the in-memory mapping with the file's contents. A missing
// file or a bad magic/version returns loaded=false and leaves the cache
// untouched.
func (c *Cache) Load(path string) (loaded bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	r := bytes.NewReader(data)
	var magic, version, count uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return false, ErrCacheFileInvalid
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return false, ErrCacheFileInvalid
	}
	if magic != cacheMagic || version != cacheVersion {
		return false, ErrCacheFileInvalid
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return false, ErrCacheFileInvalid
	}

	pairs := make([]cacheEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		original, err := readUTF16Field(r)
		if err != nil {
			// Trailing truncation; keep what decoded cleanly.
			break
		}
		translated, err := readUTF16Field(r)
		if err != nil {
			break
		}
		pairs = append(pairs, cacheEntry{original: original, translated: translated})
	}

	c.replace(pairs)
	return true, nil
}

func writeUTF16Field(buf *bytes.Buffer, s string) error {
	units, err := textenc.EncodeWide(s)
	if err != nil {
		return err
	}
	binary.Write(buf, binary.LittleEndian, uint32(len(units)/2))
	buf.Write(units)
	return nil
}

func readUTF16Field(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	raw := make([]byte, int(n)*2)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", ErrCacheFileInvalid
	}
	return textenc.DecodeWide(raw)
}
