package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWeekKey(t *testing.T) {
	cases := map[string]time.Time{
		"2024-W01": time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
		"2020-W53": time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC),
		"2026-W42": time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
	for want, at := range cases {
		if got := weekKey(at); got != want {
			t.Errorf("Expected %s for %v, got %s", want, at, got)
		}
	}
}

func TestRotatingLoggerWritesWeeklyFile(t *testing.T) {
	dir := t.TempDir()
	rl, err := NewRotatingLogger(dir, 4, 0)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	defer rl.Close()

	if _, err := rl.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	path := filepath.Join(dir, filePrefix+weekKey(time.Now())+fileSuffix)
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected weekly log file %s: %v", path, err)
	}
	if string(content) != "hello\n" {
		t.Errorf("Expected 'hello\\n', got %q", content)
	}
}

func TestRotatingLoggerSizeRotation(t *testing.T) {
	dir := t.TempDir()
	rl, err := NewRotatingLogger(dir, 4, 10)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}

	line := []byte("0123456789ab\n")
	for i := 0; i < 3; i++ {
		if _, err := rl.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	if err := rl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	week := weekKey(time.Now())
	for _, name := range []string{
		filePrefix + week + fileSuffix,
		filePrefix + week + "_01" + fileSuffix,
		filePrefix + week + "_02" + fileSuffix,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestRotatingLoggerResumesNumberedPart(t *testing.T) {
	dir := t.TempDir()
	week := weekKey(time.Now())
	base := filepath.Join(dir, filePrefix+week+fileSuffix)
	part := filepath.Join(dir, filePrefix+week+"_01"+fileSuffix)
	if err := os.WriteFile(base, []byte(strings.Repeat("x", 50)), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(part, []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}

	rl, err := NewRotatingLogger(dir, 4, 20)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	if _, err := rl.Write([]byte("z")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rl.Close()

	content, _ := os.ReadFile(part)
	if string(content) != "yz" {
		t.Errorf("Expected write appended to the numbered part, got %q", content)
	}
}

func TestRemoveExpired(t *testing.T) {
	dir := t.TempDir()
	rl, err := NewRotatingLogger(dir, 1, 0)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	defer rl.Close()

	old := filepath.Join(dir, filePrefix+"2000-W01"+fileSuffix)
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, other} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		past := time.Now().Add(-30 * 24 * time.Hour)
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := rl.removeExpired(time.Now())
	if err != nil {
		t.Fatalf("removeExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed file, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected expired log file to be removed")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("Expected unrelated file to be kept")
	}
}

func TestSetupLoggerConsoleOnly(t *testing.T) {
	logger, sink := SetupLogger(Options{})
	if logger == nil {
		t.Fatal("Expected a logger")
	}
	if sink != nil {
		t.Error("Expected no file sink without a directory")
	}
}

func TestSetupLoggerWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	logger, sink := SetupLogger(Options{Dir: dir, RetentionWeeks: 1})
	if sink == nil {
		t.Fatal("Expected a file sink")
	}
	logger.Info("catalog loaded", "drugs", 9)
	logger.Debug("hidden")
	sink.Close()

	content, err := os.ReadFile(filepath.Join(dir, filePrefix+weekKey(time.Now())+fileSuffix))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"catalog loaded"`) || !strings.Contains(string(content), `"drugs":9`) {
		t.Errorf("Expected JSON record in file, got %s", content)
	}
	if strings.Contains(string(content), "hidden") {
		t.Error("Debug record should be filtered at info level")
	}
}
