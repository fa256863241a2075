package sanitizer

import "testing"

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "guitar", "guitar"},
		{"uppercase", "GUITAR", "guitar"},
		{"leading and trailing spaces", "  guitar  ", "guitar"},
		{"internal whitespace collapsed", "lead   guitar", "lead guitar"},
		{"tabs and newlines", "lead\tguitar\n", "lead guitar"},
		{"mixed case multi word", " Lead VOCALIST ", "lead vocalist"},
		{"empty", "", ""},
		{"only whitespace", "   \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRole(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeRole(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRole_Idempotent(t *testing.T) {
	inputs := []string{"  Lead Guitar ", "BASS", "drums"}
	for _, in := range inputs {
		once := NormalizeRole(in)
		twice := NormalizeRole(once)
		if once != twice {
			t.Errorf("NormalizeRole not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeRole_NoSubstringCollapse(t *testing.T) {
	// "bass" and "bassist" must stay distinct after normalization - the
	// matcher relies on exact equality.
	if NormalizeRole("bass") == NormalizeRole("bassist") {
		t.Errorf("distinct roles normalized to the same value")
	}
}

func TestNormalizeSkills(t *testing.T) {
	got := NormalizeSkills([]string{" Jazz ", "jazz", "", "Funk", "FUNK"})
	want := []string{"jazz", "funk"}

	if len(got) != len(want) {
		t.Fatalf("expected %d skills, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("skill[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain https", "https://cdn.example.com/shot.png", "https://cdn.example.com/shot.png"},
		{"missing scheme", "cdn.example.com/shot.png", "https://cdn.example.com/shot.png"},
		{"www stripped", "https://www.example.com/a", "https://example.com/a"},
		{"host lowercased", "https://CDN.Example.COM/Shot.PNG", "https://cdn.example.com/Shot.PNG"},
		{"utm stripped", "https://example.com/a?utm_source=x&id=5", "https://example.com/a?id=5"},
		{"trailing slash stripped", "https://example.com/a/", "https://example.com/a"},
		{"empty", "", ""},
		{"garbage", "ht!tp://%%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeURL(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
