package logger

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func TestStandardLogger_Levels(t *testing.T) {
	tests := []struct {
		name   string
		log    func(Logger)
		prefix string
		body   string
	}{
		{"info", func(l Logger) { l.Info("probe %d started", 1) }, "[INFO]", "probe 1 started"},
		{"warning", func(l Logger) { l.Warning("slow: %s", "0.2 Mbps") }, "[WARNING]", "slow: 0.2 Mbps"},
		{"error", func(l Logger) { l.Error("probe failed: %v", "timeout") }, "[ERROR]", "probe failed: timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.log(NewStandardLogger(log.New(buf, "", 0)))
			out := buf.String()
			if !strings.HasPrefix(out, tt.prefix) {
				t.Errorf("expected %s prefix, got: %s", tt.prefix, out)
			}
			if !strings.Contains(out, tt.body) {
				t.Errorf("expected %q in output, got: %s", tt.body, out)
			}
		})
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("test")
	l.Warning("test")
	l.Error("test")
	if err := l.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestMockLogger_RecordsCalls(t *testing.T) {
	m := NewMockLogger()
	m.Info("info %d", 1)
	m.Warning("warn %s", "test")
	m.Error("err %v", "fail")
	_ = m.Close()

	want := []Entry{
		{Level: LevelInfo, Message: "info 1"},
		{Level: LevelWarning, Message: "warn test"},
		{Level: LevelError, Message: "err fail"},
	}
	got := m.Entries()
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}
	if msgs := m.Messages(LevelWarning); len(msgs) != 1 || msgs[0] != "warn test" {
		t.Errorf("unexpected warning messages: %v", msgs)
	}
	if !m.Closed() {
		t.Error("Closed() should be true after Close()")
	}
}

func TestMockLogger_ConcurrentUse(t *testing.T) {
	m := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Info("writer %d", i)
			_ = m.Messages(LevelInfo)
		}(i)
	}
	wg.Wait()
	if n := len(m.Messages(LevelInfo)); n != 8 {
		t.Errorf("expected 8 info messages, got %d", n)
	}
}

func TestLevel_String(t *testing.T) {
	tests := map[Level]string{
		LevelInfo:    "INFO",
		LevelWarning: "WARNING",
		LevelError:   "ERROR",
		Level(9):     "LEVEL(9)",
	}
	for lvl, want := range tests {
		if got := lvl.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", int(lvl), got, want)
		}
	}
}

type failingCloseLogger struct {
	NopLogger
	err error
}

func (f *failingCloseLogger) Close() error { return f.err }

func TestMultiLogger(t *testing.T) {
	a, b := NewMockLogger(), NewMockLogger()
	first := errors.New("first")
	multi := NewMultiLogger(a, nil, &failingCloseLogger{err: first}, b, &failingCloseLogger{err: errors.New("second")})

	multi.Info("info msg")
	multi.Warning("warn msg")
	multi.Error("error msg")

	for i, m := range []*MockLogger{a, b} {
		if got := m.Entries(); len(got) != 3 {
			t.Errorf("logger %d missed messages: %v", i, got)
		}
	}
	if err := multi.Close(); !errors.Is(err, first) {
		t.Errorf("expected first close error, got %v", err)
	}
	if !a.Closed() || !b.Closed() {
		t.Error("all backends should be closed despite errors")
	}
}

func TestFileLogger_WritesAndCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "iback.log")
	fl, err := NewFileLogger(afero.NewOsFs(), path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	fl.Warning("Slow Internet (%s)", "D/U: 0.20/1.00 Mbps")
	if err := fl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[WARNING] Slow Internet (D/U: 0.20/1.00 Mbps)") {
		t.Errorf("unexpected log content: %s", data)
	}
}

func TestFileLogger_MemMapFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	fl, err := NewFileLogger(fs, "/var/log/iback/iback.log")
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	fl.Error("Test Error: %s", "i/o timeout")
	fl.Info("Internet is back")
	if err := fl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	data, err := afero.ReadFile(fs, "/var/log/iback/iback.log")
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "[ERROR] Test Error: i/o timeout") || !strings.Contains(out, "[INFO] Internet is back") {
		t.Errorf("unexpected log content: %s", out)
	}
}

func TestFileLogger_AppendsToExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/iback.log", []byte("earlier run\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fl, err := NewFileLogger(fs, "/iback.log")
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	fl.Warning("Slow Internet")
	_ = fl.Close()

	data, _ := afero.ReadFile(fs, "/iback.log")
	if !strings.HasPrefix(string(data), "earlier run\n") || !strings.Contains(string(data), "[WARNING] Slow Internet") {
		t.Errorf("existing content not preserved: %q", data)
	}
}

func TestFileLogger_RejectsDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/var/log/iback", 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileLogger(fs, "/var/log/iback")
	if !errors.Is(err, ErrLogPathIsDir) {
		t.Fatalf("expected ErrLogPathIsDir, got %v", err)
	}
}

func TestFileLogger_EmptyPath(t *testing.T) {
	if _, err := NewFileLogger(afero.NewMemMapFs(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileLogger_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if _, err := NewFileLogger(fs, "/logs/iback.log"); err == nil {
		t.Fatal("expected error when the log directory cannot be created")
	}
}
