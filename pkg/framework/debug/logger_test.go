package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestLogger(t *testing.T) {
	t.Run("BasicLogging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "TEST", FlagLevel|FlagPrefix)

		logger.Info("Hello %s", "World")

		output := buf.String()
		if !strings.Contains(output, "INFO") {
			t.Error("Missing log level")
		}
		if !strings.Contains(output, "TEST") {
			t.Error("Missing prefix")
		}
		if !strings.Contains(output, "Hello World") {
			t.Error("Missing message")
		}
	})

	t.Run("LogLevels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel)
		logger.SetLevel(LogLevelWarn)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") {
			t.Error("Debug message should not be logged")
		}
		if strings.Contains(output, "info message") {
			t.Error("Info message should not be logged")
		}
		if !strings.Contains(output, "warn message") {
			t.Error("Warn message should be logged")
		}
		if !strings.Contains(output, "error message") {
			t.Error("Error message should be logged")
		}
	})

	t.Run("FatalLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", DefaultFlags)
		logger.SetLevel(LogLevelFatal)

		logger.Error("should not appear")

		if buf.Len() > 0 {
			t.Error("Fatal level should suppress errors")
		}
	})

	t.Run("Off", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", DefaultFlags)
		logger.SetLevel(LogLevelOff)

		logger.Error("should not appear")

		if buf.Len() > 0 {
			t.Error("Off level should suppress errors")
		}
	})

	t.Run("FileInfo", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagShortFile|FlagLevel)

		logger.Info("test")

		output := buf.String()
		if !strings.Contains(output, "logger_test.go:") {
			t.Errorf("Missing caller info in output: %s", output)
		}
	})

	t.Run("Fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel).With(zap.String("window", "0x1"))

		logger.Info("frame")

		output := buf.String()
		if !strings.Contains(output, `"window": "0x1"`) {
			t.Errorf("Missing structured field in output: %s", output)
		}
	})

	t.Run("ChildrenShareSink", func(t *testing.T) {
		var buf bytes.Buffer
		root := New(&buf, "", FlagLevel)

		const writers, lines = 8, 50
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			child := root.With(zap.Int("window", i))
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < lines; j++ {
					child.Info("frame %d", j)
				}
			}()
		}
		wg.Wait()

		got := strings.Count(buf.String(), "\n")
		if got != writers*lines {
			t.Errorf("got %d lines, want %d", got, writers*lines)
		}
	})

	t.Run("FileLoggerClose", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "out.log")
		logger, err := NewFileLogger(path, "FILE", FlagLevel|FlagPrefix)
		if err != nil {
			t.Fatal(err)
		}
		logger.With(zap.String("window", "0x1")).Warn("written")

		if err := logger.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := logger.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "written") {
			t.Errorf("log file missing message: %q", data)
		}
	})
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevelFatal, "FATAL"},
		{LogLevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"warn", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"fatal", LogLevelFatal, false},
		{"off", LogLevelOff, false},
		{"loud", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func BenchmarkLogger(b *testing.B) {
	logger := New(bytes.NewBuffer(nil), "BENCH", DefaultFlags)

	b.Run("Enabled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})

	b.Run("BelowLevel", func(b *testing.B) {
		logger.SetLevel(LogLevelError)
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})
}
