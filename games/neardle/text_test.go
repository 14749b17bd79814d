package neardle

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accents", "Café", "cafe"},
		{"case", "Bohemian RHAPSODY", "bohemian rhapsody"},
		{"apostrophes", "Don't Stop Me Now", "dont stop me now"},
		{"curly apostrophe", "Rock ’n’ Roll", "rock n roll"},
		{"punctuation runs", "  AC/DC -- Back in Black!!  ", "ac dc back in black"},
		{"uppercase accents", "ÉLÉGIE Über", "elegie uber"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Café del Mar",
		"Sigur Rós — Hoppípolla",
		"Beyoncé's (Live) [Remix]",
		"  multiple   spaces\tand\nlines ",
		"Motörhead",
		"¡Olé!",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCoreTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Song (Remastered)", "Song"},
		{"Song [Live]", "Song"},
		{"Song - 2011 Remaster", "Song"},
		{"Song", "Song"},
		{"Half-Life", "Half-Life"},
		{"Song [Live] (Remastered)", "Song"},
		{"(Untitled)", ""},
	}

	for _, tt := range tests {
		if got := CoreTitle(tt.input); got != tt.want {
			t.Errorf("CoreTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"", "abc", 0.0},
		{"abc", "abc", 1.0},
		{"abcd", "bcde", 0.75},
		{"abc", "xyz", 0.0},
		{"Song", "Song ", 8.0 / 9.0},
	}

	for _, tt := range tests {
		got := Ratio(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Bohemian Rhapsody", "Bohemian Rhapsody - Remastered 2011"},
		{"qabxcd", "abycdf"},
		{"Yesterday", "Let It Be"},
		{"aaab", "abbb"},
		{"Café", "Cafe"},
	}

	for _, p := range pairs {
		ab, ba := Ratio(p[0], p[1]), Ratio(p[1], p[0])
		if ab != ba {
			t.Errorf("Ratio(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Ratio(%q, %q) = %v out of range", p[0], p[1], ab)
		}
		if self := Ratio(p[0], p[0]); self != 1.0 {
			t.Errorf("Ratio(%q, itself) = %v, want 1", p[0], self)
		}
	}
}

func TestIsContained(t *testing.T) {
	tests := []struct {
		reference string
		guess     string
		want      bool
	}{
		{"Bohemian Rhapsody", "bohemian", true},
		{"Bohemian Rhapsody", "xyz", false},
		{"Bohemian Rhapsody", "", true},
		{"Bohemian Rhapsody", "  ", true},
		{"Bohemian Rhapsody", "rhap bohem", true},
		{"Bohemian Rhapsody", "bohemian queen", false},
		{"Café de Flore", "cafe", true},
		{"Don't Stop Me Now", "dont", true},
		{"", "anything", false},
	}

	for _, tt := range tests {
		if got := IsContained(tt.reference, tt.guess); got != tt.want {
			t.Errorf("IsContained(%q, %q) = %v, want %v", tt.reference, tt.guess, got, tt.want)
		}
	}
}
