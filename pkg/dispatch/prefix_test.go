package dispatch

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestPrefixCheckSingle(t *testing.T) {
	check := PrefixCheck("!")
	match, err := check(context.Background(), &Message{Content: "!ping now"})
	if err != nil {
		t.Fatal(err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Word != "ping" {
		t.Errorf("Word = %q, want %q", match.Word, "ping")
	}
	if !reflect.DeepEqual(match.Tokens, []string{"now"}) {
		t.Errorf("Tokens = %v, want [now]", match.Tokens)
	}
}

func TestPrefixCheckNoMatch(t *testing.T) {
	check := PrefixCheck("!", "?")
	match, err := check(context.Background(), &Message{Content: "hello there"})
	if err != nil {
		t.Fatal(err)
	}
	if match != nil {
		t.Errorf("expected no match, got %+v", match)
	}
}

func TestPrefixCheckCandidateOrder(t *testing.T) {
	// the message starts with the second candidate but not the first
	check := PrefixCheck("!!", "!")
	match, err := check(context.Background(), &Message{Content: "!roll 6"})
	if err != nil {
		t.Fatal(err)
	}
	if match == nil {
		t.Fatal("expected a match on the second candidate")
	}
	if match.Word != "roll" {
		t.Errorf("Word = %q, want %q", match.Word, "roll")
	}
}

func TestPrefixCheckFirstCandidateWins(t *testing.T) {
	// no longest-match preference: "!" is listed first and wins even
	// though "!!" also matches
	check := PrefixCheck("!", "!!")
	match, err := check(context.Background(), &Message{Content: "!!ping"})
	if err != nil {
		t.Fatal(err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Word != "!ping" {
		t.Errorf("Word = %q, want %q (remainder of the first candidate)", match.Word, "!ping")
	}
}

func TestPrefixCheckEmptyRemainder(t *testing.T) {
	check := PrefixCheck("!")
	match, err := check(context.Background(), &Message{Content: "!"})
	if err != nil {
		t.Fatal(err)
	}
	if match == nil {
		t.Fatal("a bare prefix still reports a match")
	}
	if match.Word != "" {
		t.Errorf("Word = %q, want empty", match.Word)
	}
	if len(match.Tokens) != 0 {
		t.Errorf("Tokens = %v, want none", match.Tokens)
	}
}

func TestDynamicPrefixCheck(t *testing.T) {
	check := DynamicPrefixCheck(func(_ context.Context, msg *Message) (string, error) {
		if msg.GuildID == "g1" {
			return "$", nil
		}
		return "!", nil
	})

	match, err := check(context.Background(), &Message{Content: "$ping", GuildID: "g1"})
	if err != nil {
		t.Fatal(err)
	}
	if match == nil || match.Word != "ping" {
		t.Errorf("match = %+v, want word ping", match)
	}

	match, err = check(context.Background(), &Message{Content: "$ping", GuildID: "g2"})
	if err != nil {
		t.Fatal(err)
	}
	if match != nil {
		t.Errorf("expected no match for wrong prefix, got %+v", match)
	}
}

func TestDynamicPrefixCheckError(t *testing.T) {
	wantErr := errors.New("prefix lookup failed")
	check := DynamicPrefixCheck(func(context.Context, *Message) (string, error) {
		return "", wantErr
	})
	_, err := check(context.Background(), &Message{Content: "!ping"})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
