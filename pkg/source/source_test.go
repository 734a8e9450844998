package source

import (
	"reflect"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"app.py", "python"},
		{"src/index.JS", "javascript"},
		{"component.tsx", "typescript"},
		{"Main.java", "java"},
		{"index.php", "php"},
		{"README", Unknown},
		{"notes.txt", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectLanguage(tt.path); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"JS":         "javascript",
		" python ":   "python",
		"golang":     "go",
		"JavaScript": "javascript",
		"cobol":      "cobol",
	}
	for in, want := range tests {
		if got := NormalizeLanguage(in); got != want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsTestPath(t *testing.T) {
	tests := map[string]bool{
		"pkg/scan_test.go":      true,
		"src/app.test.js":       true,
		"src/app.spec.ts":       true,
		"tests/test_models.py":  true,
		"src/contest/winner.go": false,
		"main.go":               false,
	}
	for path, want := range tests {
		if got := IsTestPath(path); got != want {
			t.Errorf("IsTestPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single", "a", []string{"a"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb", []string{"a", "b"}},
		{"blank middle", "a\n\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lines(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	lines := []string{"0", "1", "2", "3", "4", "5", "6"}
	tests := []struct {
		name   string
		i      int
		radius int
		want   []string
	}{
		{"middle", 3, 2, []string{"1", "2", "3", "4", "5"}},
		{"clipped start", 0, 3, []string{"0", "1", "2", "3"}},
		{"clipped end", 6, 3, []string{"3", "4", "5", "6"}},
		{"zero radius", 2, 0, []string{"2"}},
		{"out of range", 9, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Window(lines, tt.i, tt.radius); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Window(%d, %d) = %q, want %q", tt.i, tt.radius, got, tt.want)
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	text := "import os\n\n# comment\ndef run():\n    return 1\n"
	m := Measure(text)
	want := Metrics{Lines: 5, Chars: len(text), Blank: 1, Comments: 1, Functions: 1, Imports: 1}
	if m != want {
		t.Errorf("Measure() = %+v, want %+v", m, want)
	}
}
