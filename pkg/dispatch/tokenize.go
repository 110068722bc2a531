// Package dispatch turns free-text chat messages into typed command
// invocations: it matches a configured prefix, tokenizes the remainder,
// resolves the (possibly nested) command, converts tokens against the
// command's declared parameter shape, and invokes the handler. It also owns
// the runtime lifecycle of command plugins and their background tasks.
package dispatch

import (
	"regexp"
	"strings"
)

// sentinel temporarily replaces delimiters inside quoted spans while
// splitting. Not expected to occur in normal message text.
const sentinel = "\x00"

var quotedSpan = regexp.MustCompile(`".+?"`)

// Tokenize splits content on single spaces, keeping double-quoted spans
// together as one token. The surrounding quotes stay on the token; quote
// stripping happens later, during argument conversion.
//
//	Tokenize(`send "hello world" now`) // ["send", `"hello world"`, "now"]
//
// Unmatched quotes are treated as ordinary characters. Runs of delimiters
// collapse; empty input yields no tokens.
func Tokenize(content string) []string {
	return TokenizeDelim(content, " ")
}

// TokenizeDelim is Tokenize with a custom single-character delimiter.
func TokenizeDelim(content, delim string) []string {
	if content == "" {
		return nil
	}
	masked := quotedSpan.ReplaceAllStringFunc(content, func(span string) string {
		return strings.ReplaceAll(span, delim, sentinel)
	})

	var tokens []string
	for _, part := range strings.Split(masked, delim) {
		if part == "" {
			continue
		}
		tokens = append(tokens, strings.ReplaceAll(part, sentinel, delim))
	}
	return tokens
}

// StripQuotes removes one matching pair of surrounding double quotes, if
// present. Inner quotes are left alone.
func StripQuotes(token string) string {
	if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
		return token[1 : len(token)-1]
	}
	return token
}
