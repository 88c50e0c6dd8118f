package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"fatal", FatalLevel, false},
		{"loud", InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriterLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, WarnLevel)

	l.Info("hidden")
	l.Warn("shown", Fields{"file": "a.wav"})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown file=a.wav") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestWithFieldsAndContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, DebugLevel).WithFields(Fields{"stage": "blocker"})

	ctx := ContextWithFields(context.Background(), Fields{"run": 7})
	l.WithContext(ctx).Error(errors.New("boom"), "failed", Fields{"b": 1})

	out := buf.String()
	if !strings.Contains(out, "[ERROR] failed: boom b=1 run=7 stage=blocker") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFatalDoesNotExitWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, InfoLevel)
	l.Fatal(errors.New("bad"), "stop")
	if !strings.Contains(buf.String(), "[FATAL] stop: bad") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestGlobalHelpersUseInstalledLogger(t *testing.T) {
	previous := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(previous) })

	var buf bytes.Buffer
	SetGlobalLogger(NewWriterLogger(&buf, InfoLevel))

	Debug("dropped")
	SetLevel(DebugLevel)
	Debug("kept")
	Info("started", Fields{"files": 2})
	DisableColors()

	ctx := ContextWithFields(context.Background(), Fields{"run": 3})
	WithContext(ctx).WithFields(Fields{"command": "build"}).Info("scoped")
	WithFields(Fields{"stage": "export"}).Warn("slow")
	Fatal(errors.New("boom"), "failed")

	out := buf.String()
	for _, want := range []string{
		"[DEBUG] kept",
		"[INFO] started files=2",
		"[INFO] scoped command=build run=3",
		"[WARN] slow stage=export",
		"[FATAL] failed: boom",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("debug line logged below level:\n%s", out)
	}
}
