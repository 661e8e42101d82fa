package logging

import "testing"

func TestNewValidLevelsAndFormats(t *testing.T) {
	cases := []struct {
		level  string
		format string
	}{
		{"info", "json"},
		{"debug", "console"},
		{"warn", ""},
	}
	for _, c := range cases {
		log, err := New(c.level, c.format)
		if err != nil {
			t.Errorf("New(%q, %q) error: %v", c.level, c.format, err)
			continue
		}
		if log == nil {
			t.Errorf("New(%q, %q) returned nil logger", c.level, c.format)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("not-a-level", "json"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New("info", "xml"); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}
