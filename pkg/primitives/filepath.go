package primitives

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Filepath names a heap file, the catalog schema file or the log file.
//
//	dataDir := primitives.Filepath("/data")
//	users := dataDir.Join("users.dat")
//	id := users.HashAsTableID()
type Filepath string

// Hash is the first 8 bytes, little endian, of the path's BLAKE3 digest.
// The same path always yields the same id.
func (f Filepath) Hash() FileID {
	sum := blake3.Sum256([]byte(f))
	return FileID(binary.LittleEndian.Uint64(sum[:8]))
}

func (f Filepath) HashAsTableID() TableID { return f.Hash().AsTableID() }

// Abs returns the absolute form of the path, or the path unchanged if it cannot be resolved.
func (f Filepath) Abs() Filepath {
	if abs, err := filepath.Abs(string(f)); err == nil {
		return Filepath(abs)
	}
	return f
}

func (f Filepath) Join(elem ...string) Filepath {
	return Filepath(filepath.Join(append([]string{string(f)}, elem...)...))
}

func (f Filepath) Dir() string    { return filepath.Dir(string(f)) }
func (f Filepath) Base() string   { return filepath.Base(string(f)) }
func (f Filepath) String() string { return string(f) }
func (f Filepath) IsEmpty() bool  { return f == "" }

func (f Filepath) Exists() bool {
	_, err := os.Stat(string(f))
	return err == nil
}
