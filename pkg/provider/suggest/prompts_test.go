package suggest

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseSuggestions_OnePerLine(t *testing.T) {
	got := ParseSuggestions("Need water please\nAdjust my pillow\nToo cold")
	want := []string{"Need water please", "Adjust my pillow", "Too cold"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSuggestions = %v, want %v", got, want)
	}
}

func TestParseSuggestions_StripsListMarkers(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"1. Need water", "Need water"},
		{"12. Call nurse", "Call nurse"},
		{"- Too cold", "Too cold"},
		{"* Yes please", "Yes please"},
	}
	for _, tt := range tests {
		got := ParseSuggestions(tt.line + "\nsecond\nthird")
		if got[0] != tt.want {
			t.Errorf("ParseSuggestions(%q)[0] = %q, want %q", tt.line, got[0], tt.want)
		}
	}
}

func TestParseSuggestions_DropsOverlongLines(t *testing.T) {
	long := strings.Repeat("x", 31)
	got := ParseSuggestions(long + "\nNeed water\nToo cold\nCall nurse")
	for _, s := range got {
		if s == long {
			t.Errorf("overlong line survived: %q", s)
		}
	}
}

func TestParseSuggestions_CapsAtFive(t *testing.T) {
	got := ParseSuggestions("one\ntwo\nthree\nfour\nfive\nsix\nseven")
	if len(got) != MaxSuggestions {
		t.Errorf("len = %d, want %d", len(got), MaxSuggestions)
	}
}

func TestParseSuggestions_PadsShortLists(t *testing.T) {
	got := ParseSuggestions("Need water\nYes")
	if len(got) < 3 {
		t.Fatalf("len = %d, want at least 3 after padding", len(got))
	}
	if got[0] != "Need water" || got[1] != "Yes" {
		t.Errorf("parsed lines must come before padding: %v", got)
	}
	// "Yes" is already present; padding must not duplicate it.
	count := 0
	for _, s := range got {
		if s == "Yes" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("padding duplicated %q: %v", "Yes", got)
	}
}

func TestParseSuggestions_EmptyInputPads(t *testing.T) {
	got := ParseSuggestions("")
	want := []string{"Yes", "No", "Thank you", "Need help", "Not now"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSuggestions(\"\") = %v, want pad pool %v", got, want)
	}
}

func TestFallbacks_ReturnsCopy(t *testing.T) {
	first := Fallbacks()
	first[0] = "tampered"
	if Fallbacks()[0] != "Need help" {
		t.Error("ErrorFallbacks mutated through returned slice")
	}
}

func TestPrompts_EmbedTheInput(t *testing.T) {
	if got := CompleteUserPrompt("I need w"); !strings.Contains(got, `"I need w"`) {
		t.Errorf("CompleteUserPrompt = %q", got)
	}
	if got := SuggestUserPrompt("I'm cold"); !strings.Contains(got, `"I'm cold"`) {
		t.Errorf("SuggestUserPrompt = %q", got)
	}
}
