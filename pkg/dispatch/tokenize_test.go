package dispatch

import (
	"reflect"
	"testing"
)

func TestTokenizePlain(t *testing.T) {
	got := Tokenize("send hello world")
	want := []string{"send", "hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeQuotedSpan(t *testing.T) {
	got := Tokenize(`send "Fuyukai desu" "Hello, world!"`)
	want := []string{"send", `"Fuyukai desu"`, `"Hello, world!"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeKeepsQuotesOnToken(t *testing.T) {
	got := Tokenize(`"hello world"`)
	if len(got) != 1 {
		t.Fatalf("Tokenize() = %v, want one token", got)
	}
	if got[0] != `"hello world"` {
		t.Errorf("token = %q, want quotes preserved", got[0])
	}
}

func TestTokenizeUnmatchedQuote(t *testing.T) {
	got := Tokenize(`say "oops there`)
	want := []string{"say", `"oops`, "there"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize(""); got != nil {
		t.Errorf("Tokenize(\"\") = %v, want nil", got)
	}
}

func TestTokenizeCollapsesDelimiters(t *testing.T) {
	got := Tokenize("a   b  c")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeDelimCustom(t *testing.T) {
	got := TokenizeDelim("a,b,,c", ",")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeDelim() = %v, want %v", got, want)
	}
}

func TestStripQuotes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`"hello world"`, "hello world"},
		{"plain", "plain"},
		{`"unbalanced`, `"unbalanced`},
		{`""`, ""},
		{`"`, `"`},
		{`"a "b" c"`, `a "b" c`},
	}
	for _, c := range cases {
		if got := StripQuotes(c.in); got != c.want {
			t.Errorf("StripQuotes(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
