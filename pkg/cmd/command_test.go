package cmd

import (
	"context"
	"reflect"
	"testing"
)

var stringType = reflect.TypeOf("")

func noop(context.Context, *Invocation) error { return nil }

func TestNewDescriptionFromDoc(t *testing.T) {
	c := New("ban", noop, WithDoc("Bans a user.\n\nUsage: ban <user> [reason]"))
	if got := c.Description(); got != "Bans a user." {
		t.Errorf("Description() = %q, want first doc line", got)
	}

	// an explicit description wins over the doc text
	c = New("kick", noop,
		WithDescription("Kicks a user."),
		WithDoc("Something longer entirely."),
	)
	if got := c.Description(); got != "Kicks a user." {
		t.Errorf("Description() = %q, want explicit description", got)
	}
}

func TestNewEmptyNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New with empty name must panic")
		}
	}()
	New("", noop)
}

func TestMatches(t *testing.T) {
	c := New("echo", noop, WithAliases("say", "repeat"))
	for _, token := range []string{"echo", "say", "repeat"} {
		if !c.Matches(token) {
			t.Errorf("Matches(%q) = false, want true", token)
		}
	}
	if c.Matches("shout") {
		t.Error("Matches(shout) = true, want false")
	}
}

func TestSubcommand(t *testing.T) {
	owner := struct{ name string }{"plug"}
	parent := New("role", noop, WithOwner(&owner))
	add := parent.Subcommand("add", noop, WithAliases("give"))
	remove := parent.Subcommand("remove", noop)

	if !add.IsSubcommand() || !remove.IsSubcommand() {
		t.Error("Subcommand descriptors must report IsSubcommand")
	}
	if parent.IsSubcommand() {
		t.Error("parent must not report IsSubcommand")
	}
	if add.Owner() != &owner {
		t.Error("subcommands must inherit the parent's owner")
	}
	if got := parent.FindSubcommand("give"); got != add {
		t.Errorf("FindSubcommand(give) = %v, want add via alias", got)
	}
	if got := parent.FindSubcommand("ghost"); got != nil {
		t.Errorf("FindSubcommand(ghost) = %v, want nil", got)
	}
	if got := len(parent.Subcommands()); got != 2 {
		t.Errorf("len(Subcommands()) = %d, want 2", got)
	}
}

func TestSubcommandDescriptorsAreIndependent(t *testing.T) {
	// the same handler under two parents yields two descriptors
	p1 := New("a", noop)
	p2 := New("b", noop)
	s1 := p1.Subcommand("shared", noop)
	s2 := p2.Subcommand("shared", noop)
	if s1 == s2 {
		t.Error("each Subcommand call must produce its own descriptor")
	}
}

func TestValidateParamsRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name   string
		params []Param
	}{
		{"unreachable after keyword-only", []Param{
			Rest("text", stringType),
			Arg("after", stringType),
		}},
		{"unreachable after variadic-positional", []Param{
			VarArgs("text", stringType),
			Arg("after", stringType),
		}},
		{"duplicate name", []Param{
			Arg("x", stringType),
			Arg("x", stringType),
		}},
		{"required after defaulted", []Param{
			OptArg("x", stringType, "d"),
			Arg("y", stringType),
		}},
		{"variadic-keyword not last", []Param{
			{Name: "extra", Kind: VarKeyword},
			Arg("x", stringType),
		}},
		{"unnamed parameter", []Param{
			{Kind: Positional},
		}},
	}

	for _, c := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: New must panic", c.name)
				}
			}()
			New("bad", noop, WithParams(c.params...))
		}()
	}
}

func TestValidateParamsAcceptsGoodShapes(t *testing.T) {
	cases := [][]Param{
		{Arg("a", stringType), Rest("b", stringType)},
		{Arg("a", stringType), OptArg("b", stringType, "d")},
		{VarArgs("text", stringType)},
		{Rest("text", stringType), {Name: "extra", Kind: VarKeyword}},
		nil,
	}
	for _, params := range cases {
		New("ok", noop, WithParams(params...)) // must not panic
	}
}

func TestRegistryAliasResolution(t *testing.T) {
	r := NewRegistry()
	c := New("echo", noop, WithAliases("say"))
	r.Register(c)

	if r.Get("echo") != c || r.Get("say") != c {
		t.Error("name and alias must resolve to the same descriptor")
	}
	if r.Get("ghost") != nil {
		t.Error("unknown name must resolve to nil")
	}
}

func TestRegistryRemoveDropsAliases(t *testing.T) {
	r := NewRegistry()
	r.Register(New("echo", noop, WithAliases("say", "repeat")))

	if got := r.Remove("say"); got == nil {
		t.Fatal("Remove by alias must return the descriptor")
	}
	for _, key := range []string{"echo", "say", "repeat"} {
		if r.Get(key) != nil {
			t.Errorf("Get(%q) after Remove must be nil", key)
		}
	}
	if r.Remove("echo") != nil {
		t.Error("Remove of an absent name must return nil")
	}
}

func TestRegistryGetAllDistinctSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(New("zeta", noop, WithAliases("z")))
	r.Register(New("alpha", noop))

	all := r.GetAll()
	if len(all) != 2 {
		t.Fatalf("GetAll() returned %d commands, want 2 distinct", len(all))
	}
	if all[0].Name() != "alpha" || all[1].Name() != "zeta" {
		t.Errorf("GetAll() order = [%s %s], want sorted by name", all[0].Name(), all[1].Name())
	}
}

func TestApplyMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, inv *Invocation) error {
				order = append(order, name)
				return next(ctx, inv)
			}
		}
	}

	h := Apply(func(context.Context, *Invocation) error {
		order = append(order, "handler")
		return nil
	}, tag("outer"), tag("inner"))

	if err := h(context.Background(), &Invocation{}); err != nil {
		t.Fatal(err)
	}
	want := []string{"outer", "inner", "handler"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestGuardSkipsWithoutError(t *testing.T) {
	ran := false
	h := Apply(func(context.Context, *Invocation) error {
		ran = true
		return nil
	}, Guard(func(context.Context, *Invocation) bool { return false }))

	if err := h(context.Background(), &Invocation{}); err != nil {
		t.Errorf("guarded handler = %v, want nil", err)
	}
	if ran {
		t.Error("handler must be skipped when the guard denies")
	}
}

func TestWrapSharesDescriptor(t *testing.T) {
	c := New("role", noop, WithAliases("r"), WithParams(Arg("target", stringType)))
	c.Subcommand("add", noop)

	ran := false
	w := Wrap(c, func(context.Context, *Invocation) error {
		ran = true
		return nil
	})

	if w.Name() != c.Name() || len(w.Aliases()) != 1 || len(w.Params()) != 1 {
		t.Error("wrapped command must share naming and parameter shape")
	}
	if w.FindSubcommand("add") != c.FindSubcommand("add") {
		t.Error("wrapped command must share the subcommand list")
	}
	if err := w.Handler()(context.Background(), &Invocation{}); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("wrapped handler did not run")
	}
}
