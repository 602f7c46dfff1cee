package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"bogus", zapcore.ErrorLevel},
		{"", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		l := New(tt.level)
		if !l.Desugar().Core().Enabled(tt.want) {
			t.Errorf("New(%q): level %s should be enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && l.Desugar().Core().Enabled(tt.want-1) {
			t.Errorf("New(%q): level below %s should be disabled", tt.level, tt.want)
		}
	}
}

func TestSet(t *testing.T) {
	l := New("warn")
	Set(l)
	if Get() != l {
		t.Error("Get should return the logger installed with Set")
	}
}
