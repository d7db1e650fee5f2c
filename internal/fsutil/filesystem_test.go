package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_CreateAndOpen(t *testing.T) {
	ofs := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "nested", "out")

	if err := ofs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	path := filepath.Join(dir, "event.json")
	w, err := ofs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := io.WriteString(w, `{"events":[]}`); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := ofs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != `{"events":[]}` {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file on disk: %v", err)
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	mfs.WriteFile("/data/events.yaml", []byte("events: []\n"))

	if !mfs.Exists("/data") {
		t.Error("expected parent directory to exist")
	}
	data, err := mfs.ReadFile("/data/events.yaml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "events: []\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestMemoryFileSystem_CreateVisibleAfterClose(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/out/plots", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	w, err := mfs.Create("/out/plots/event_1.png")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, _ = w.Write([]byte("png"))

	data, _ := mfs.ReadFile("/out/plots/event_1.png")
	if len(data) != 0 {
		t.Errorf("expected empty file before Close, got %q", data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, _ = mfs.ReadFile("/out/plots/event_1.png")
	if string(data) != "png" {
		t.Errorf("expected written content after Close, got %q", data)
	}

	files := mfs.Files("/out")
	if len(files) != 1 || files[0] != "/out/plots/event_1.png" {
		t.Errorf("Files() = %v", files)
	}
}

func TestMemoryFileSystem_CreateRequiresDirectory(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.Create("/missing/file.html")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_OpenMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.Open("/nope.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if mfs.Exists("/nope.json") {
		t.Error("expected missing file to not exist")
	}
}
