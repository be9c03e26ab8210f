package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "Juan Dela Cruz", "Juan Dela Cruz"},
		{"tags stripped", "<b>123 Rizal St</b>", "123 Rizal St"},
		{"script stripped", "<script>alert(1)</script>Quezon City", "alert(1)Quezon City"},
		{"entity encoded tags stripped", "&lt;img src=x&gt;Manila", "Manila"},
		{"whitespace trimmed", "  Pasig  ", "Pasig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextPtr(t *testing.T) {
	if got := TextPtr(nil); got != nil {
		t.Fatalf("TextPtr(nil) = %v, want nil", got)
	}
	in := "<i>Santos</i>"
	got := TextPtr(&in)
	if got == nil || *got != "Santos" {
		t.Fatalf("TextPtr(%q) = %v, want Santos", in, got)
	}
}
