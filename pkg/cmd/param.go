package cmd

import (
	"fmt"
	"reflect"
)

// ParamKind describes how a parameter consumes argument tokens.
type ParamKind int

const (
	// Positional consumes exactly one token.
	Positional ParamKind = iota
	// KeywordOnly consumes every remaining token, joined with a space,
	// and is delivered under the parameter's name.
	KeywordOnly
	// VarPositional consumes every remaining token, joined with a space,
	// and is appended to the positional arguments.
	VarPositional
	// VarKeyword never consumes tokens. Accepted for completeness.
	VarKeyword
)

// String returns a short human-readable kind name.
func (k ParamKind) String() string {
	switch k {
	case Positional:
		return "positional"
	case KeywordOnly:
		return "keyword-only"
	case VarPositional:
		return "variadic-positional"
	case VarKeyword:
		return "variadic-keyword"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// Param declares one handler parameter. The leading dispatch context is not
// declared; only parameters fed from message tokens are.
type Param struct {
	Name       string
	Kind       ParamKind
	Type       reflect.Type // converter lookup key; nil means plain string
	Default    any
	HasDefault bool
}

// Arg declares a required positional parameter.
func Arg(name string, typ reflect.Type) Param {
	return Param{Name: name, Kind: Positional, Type: typ}
}

// OptArg declares a positional parameter with a default value used when no
// token remains for it.
func OptArg(name string, typ reflect.Type, def any) Param {
	return Param{Name: name, Kind: Positional, Type: typ, Default: def, HasDefault: true}
}

// Rest declares a keyword-only parameter that absorbs the rest of the input.
func Rest(name string, typ reflect.Type) Param {
	return Param{Name: name, Kind: KeywordOnly, Type: typ}
}

// OptRest declares an absorbing keyword-only parameter with a default.
func OptRest(name string, typ reflect.Type, def any) Param {
	return Param{Name: name, Kind: KeywordOnly, Type: typ, Default: def, HasDefault: true}
}

// VarArgs declares a variadic-positional parameter that absorbs the rest of
// the input into a single positional value.
func VarArgs(name string, typ reflect.Type) Param {
	return Param{Name: name, Kind: VarPositional, Type: typ}
}

// consumesRest reports whether the parameter absorbs all remaining tokens.
func (p Param) consumesRest() bool {
	return p.Kind == KeywordOnly || p.Kind == VarPositional
}

// validateParams rejects parameter shapes that would starve later parameters
// of tokens. Token starvation was a silent per-invocation surprise in older
// dispatchers; here it fails at definition time.
func validateParams(name string, params []Param) error {
	seen := make(map[string]struct{}, len(params))
	restAt := -1
	defaulted := false
	for i, p := range params {
		if p.Name == "" {
			return fmt.Errorf("command %q: parameter %d has no name", name, i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("command %q: duplicate parameter %q", name, p.Name)
		}
		seen[p.Name] = struct{}{}

		if restAt >= 0 && p.Kind != VarKeyword {
			return fmt.Errorf("command %q: parameter %q is unreachable after %s parameter %q",
				name, p.Name, params[restAt].Kind, params[restAt].Name)
		}
		switch p.Kind {
		case Positional:
			if defaulted && !p.HasDefault {
				return fmt.Errorf("command %q: required parameter %q follows a defaulted one", name, p.Name)
			}
			if p.HasDefault {
				defaulted = true
			}
		case KeywordOnly, VarPositional:
			restAt = i
		case VarKeyword:
			if i != len(params)-1 {
				return fmt.Errorf("command %q: variadic-keyword parameter %q must be last", name, p.Name)
			}
		default:
			return fmt.Errorf("command %q: parameter %q has unknown kind %d", name, p.Name, int(p.Kind))
		}
	}
	return nil
}
