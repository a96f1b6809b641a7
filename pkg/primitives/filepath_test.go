package primitives

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilepath_Hash(t *testing.T) {
	tablePath := Filepath("/data/users.dat")
	otherPath := Filepath("/data/orders.dat")

	if tablePath.Hash() != tablePath.Hash() {
		t.Errorf("same path should produce same FileID")
	}
	if tablePath.Hash() == otherPath.Hash() {
		t.Errorf("different paths should have different FileIDs")
	}
	if TableID(tablePath.Hash()) != tablePath.HashAsTableID() {
		t.Errorf("HashAsTableID should match Hash conversion")
	}
	if tablePath.Hash() == InvalidFileID {
		t.Errorf("hashed id should be non-zero")
	}
}

func TestFilepath_PathHelpers(t *testing.T) {
	p := Filepath("/data").Join("tables", "users.dat")

	if p.String() != filepath.Join("/data", "tables", "users.dat") {
		t.Errorf("unexpected join result %q", p)
	}
	if p.Base() != "users.dat" {
		t.Errorf("expected base users.dat, got %q", p.Base())
	}
	if p.Dir() != filepath.Join("/data", "tables") {
		t.Errorf("unexpected dir %q", p.Dir())
	}
	if !Filepath("").IsEmpty() || p.IsEmpty() {
		t.Errorf("IsEmpty should only hold for the empty path")
	}
	if !filepath.IsAbs(Filepath("rel.dat").Abs().String()) {
		t.Errorf("Abs should return an absolute path")
	}
}

func TestFilepath_Exists(t *testing.T) {
	p := Filepath(t.TempDir()).Join("t.dat")

	if p.Exists() {
		t.Fatalf("file should not exist yet")
	}
	if err := os.WriteFile(p.String(), []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !p.Exists() {
		t.Fatalf("file should exist")
	}
}
