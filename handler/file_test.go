package handler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/formatter"
)

func TestFileSinkWriteAndFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	sink, err := NewFileSink(FileConfig{
		Path:        path,
		TemplateCfg: formatter.Config{Template: "{message}"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	if err := sink.WriteStructured(core.InfoLevel, "line one", nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "line one\n" {
		t.Fatalf("got %q", data)
	}
}

// TestRotationRetention is §8 scenario 6: after exceeding max_size with
// max_rotated_files=3, app.log, app.log.0, app.log.1, app.log.2 exist
// (at most K+1 files), and the oldest is dropped across repeated
// rotations.
func TestRotationRetention(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	sink, err := NewFileSink(FileConfig{
		Path:             path,
		TemplateCfg:      formatter.Config{Template: "{message}"},
		RotationMode:     RotationSize,
		MaxSize:          1024,
		MaxRotatedFiles:  3,
		FlushThresholdPct: 100,
		FlushInterval:    time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	line := strings.Repeat("x", 200) // 201 bytes with newline
	for i := 0; i < 20; i++ {
		if err := sink.WriteStructured(core.InfoLevel, line, nil, nil); err != nil {
			t.Fatal(err)
		}
		sink.Flush()
	}

	for _, suffix := range []string{"", ".0", ".1", ".2"} {
		if _, err := os.Stat(path + suffix); err != nil {
			t.Errorf("expected %s to exist: %v", path+suffix, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("expected %s.3 not to exist (retention K=3)", path)
	}
}

func TestFileSinkLevelGate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	sink, err := NewFileSink(FileConfig{Path: path, MinLevel: core.ErrorLevel})
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	if err := sink.WriteStructured(core.InfoLevel, "skip me", nil, nil); err != nil {
		t.Fatal(err)
	}
	sink.Flush()
	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Fatalf("expected no bytes written below min level, got %q", data)
	}
}

func TestFileSinkCompression(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	sink, err := NewFileSink(FileConfig{
		Path:             path,
		TemplateCfg:      formatter.Config{Template: "{message}"},
		RotationMode:     RotationSize,
		MaxSize:          10,
		MaxRotatedFiles:  2,
		Compress:         true,
		FlushThresholdPct: 100,
		FlushInterval:    time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	if err := sink.WriteStructured(core.InfoLevel, "trigger rotation now", nil, nil); err != nil {
		t.Fatal(err)
	}
	sink.Flush()

	if _, err := os.Stat(path + ".0.gz"); err != nil {
		t.Fatalf("expected compressed rotated file: %v", err)
	}
	if _, err := os.Stat(path + ".0"); !os.IsNotExist(err) {
		t.Fatalf("expected uncompressed .0 to be removed after compression")
	}
}
