package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/voyager/internal/app/system/htmlsanitize"
)

func TestPlainText_Empty(t *testing.T) {
	if got := htmlsanitize.PlainText("   "); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPlainText_Unchanged(t *testing.T) {
	in := "Hi! Can I join the Lisbon leg?"
	if got := htmlsanitize.PlainText(in); got != in {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestPlainText_KeepsAmpersands(t *testing.T) {
	in := "Tom & Jerry want to come (2 < 3)"
	if got := htmlsanitize.PlainText(in); got != in {
		t.Errorf("expected text unchanged, got %q", got)
	}
}

func TestPlainText_StripsTags(t *testing.T) {
	got := htmlsanitize.PlainText("<p><strong>Bold</strong> move</p>")
	if got != "Bold move" {
		t.Errorf("expected tags stripped, got %q", got)
	}
}

func TestPlainText_RemovesScript(t *testing.T) {
	got := htmlsanitize.PlainText("<p>Hello</p><script>alert('xss')</script>")
	if strings.Contains(got, "alert") {
		t.Errorf("expected script content removed, got %q", got)
	}
	if !strings.Contains(got, "Hello") {
		t.Errorf("expected text kept, got %q", got)
	}
}

func TestPlainText_KeepsLiteralText(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"escaped script", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"less than", "if a<b then go"},
		{"angle brackets", "meet at <gate 5>"},
		{"arrow", "Lisbon -> Porto <3"},
		{"named entity", "caf&eacute; stop at 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.in); got != tt.in {
				t.Errorf("PlainText(%q) = %q, want it unchanged", tt.in, got)
			}
		})
	}
}

func TestPlainText_NeverProducesMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<<b>script>alert(1)</script>", ""},
		{"hi <i>there</i> <gate 5>", "hi there <gate 5>"},
		{"<a href=\"javascript:alert(1)\">click</a> me", "click me"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := htmlsanitize.PlainText(tt.in)
			if got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if strings.Contains(got, "<script") {
				t.Errorf("PlainText(%q) left a script tag: %q", tt.in, got)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"see you at the airport", true},
		{"<b>see you</b>", false},
		{`<a href="javascript:alert(1)">x</a>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := htmlsanitize.IsPlainText(tt.in); got != tt.want {
				t.Errorf("IsPlainText(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
