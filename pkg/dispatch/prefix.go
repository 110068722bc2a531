package dispatch

import (
	"context"
	"strings"
)

// Match is the result of a successful message check: the command word and
// the tokens after it. A matched prefix with nothing behind it still counts
// as a match with an empty Word; resolution then simply finds no command.
type Match struct {
	Word   string
	Tokens []string
}

// MessageCheck decides whether a message invokes a command. A nil Match
// means no match, which is not an error.
type MessageCheck func(ctx context.Context, msg *Message) (*Match, error)

// PrefixFunc produces the effective prefix for one message. It may block;
// the dispatch context is passed through for cancellation.
type PrefixFunc func(ctx context.Context, msg *Message) (string, error)

// PrefixCheck returns a MessageCheck matching messages that start with one
// of the given prefixes. Candidates are tested in the given order and the
// first prefix the content starts with wins; there is no longest-match
// preference, so put more specific prefixes first. Empty candidates are
// skipped.
func PrefixCheck(prefixes ...string) MessageCheck {
	return func(_ context.Context, msg *Message) (*Match, error) {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(msg.Content, p) {
				return splitMatch(msg.Content[len(p):]), nil
			}
		}
		return nil, nil
	}
}

// DynamicPrefixCheck returns a MessageCheck that asks fn for the prefix on
// every message, then matches like PrefixCheck with a single candidate.
func DynamicPrefixCheck(fn PrefixFunc) MessageCheck {
	return func(ctx context.Context, msg *Message) (*Match, error) {
		p, err := fn(ctx, msg)
		if err != nil {
			return nil, err
		}
		if p == "" || !strings.HasPrefix(msg.Content, p) {
			return nil, nil
		}
		return splitMatch(msg.Content[len(p):]), nil
	}
}

func splitMatch(rest string) *Match {
	tokens := Tokenize(rest)
	if len(tokens) == 0 {
		return &Match{}
	}
	return &Match{Word: tokens[0], Tokens: tokens[1:]}
}
