package sanitize

import (
	"strings"
	"testing"
)

func TestString_StripsControlCharacters(t *testing.T) {
	got := String("a\x00b\x1fc\x7fd")
	if got != "abcd" {
		t.Fatalf("expected %q, got %q", "abcd", got)
	}
}

func TestString_StripsAngleBrackets(t *testing.T) {
	got := String(`<script>alert("x")</script>`)
	if got != `scriptalert("x")/script` {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestString_TrimsWhitespace(t *testing.T) {
	if got := String("  hello world  "); got != "hello world" {
		t.Fatalf("expected trimmed string, got %q", got)
	}
	// Interior whitespace survives.
	if got := String("a  b"); got != "a  b" {
		t.Fatalf("interior whitespace changed: %q", got)
	}
}

func TestString_TruncatesToBackstop(t *testing.T) {
	long := strings.Repeat("x", MaxFieldChars+500)
	got := String(long)
	if len([]rune(got)) != MaxFieldChars {
		t.Fatalf("expected %d chars, got %d", MaxFieldChars, len([]rune(got)))
	}
}

func TestString_EmptyStaysEmpty(t *testing.T) {
	if got := String(""); got != "" {
		t.Fatalf("empty input must stay empty, got %q", got)
	}
	// All-control input collapses to empty, not to something else.
	if got := String("\x01\x02  "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestString_Idempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		"  <b>bold\x00</b>  ",
		strings.Repeat("y ", MaxFieldChars), // forces a truncation cut
		"",
	}
	for _, in := range inputs {
		once := String(in)
		twice := String(once)
		if once != twice {
			t.Errorf("not idempotent for %.30q: %q != %q", in, once, twice)
		}
	}
}

func TestString_KeepsUnicode(t *testing.T) {
	if got := String("ошибка: 失败 ü"); got != "ошибка: 失败 ü" {
		t.Fatalf("unicode mangled: %q", got)
	}
}
