package htmlsanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Morning run at the lake", "Morning run at the lake"},
		{"script removed", `Nice day <script>alert("xss")</script>`, "Nice day"},
		{"formatting stripped to text", "So <b>happy</b> today", "So happy today"},
		{"anchor stripped to text", `see <a href="https://evil.example">this</a>`, "see this"},
		{"whitespace trimmed", "  hello  ", "hello"},
		{"entities stay readable", "fish & chips", "fish & chips"},
		{"image tag removed", `<img src=x onerror=alert(1)>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"just words", true},
		{"a < b", true},
		{"a > b", true},
		{"<p>hello</p>", false},
		{"x < y > z", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsPlainText(tt.input); got != tt.want {
				t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
