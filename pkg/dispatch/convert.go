package dispatch

import (
	"strings"

	"github.com/keshon/dispatchkit/pkg/cmd"
)

// convertArgs maps tokens onto a declared parameter shape, producing the
// positional and keyword arguments for a handler.
//
// Consumption rules, in declaration order against a cursor over tokens:
//   - positional: one token, surrounding quotes stripped, converted;
//     when no token remains the declared default is used, or a
//     MissingArgumentError is raised
//   - keyword-only: absorbs every remaining token joined with a space,
//     stored under the parameter name
//   - variadic-positional: same greedy absorb, appended positionally;
//     with no tokens left it consumes nothing and conversion stops
//   - variadic-keyword: never consumes tokens
func convertArgs(ctx *Context, tokens []string, params []cmd.Param, reg *ConverterRegistry) ([]any, map[string]any, error) {
	var args []any
	kwargs := make(map[string]any)

	i := 0
	for _, p := range params {
		if p.Kind == cmd.VarKeyword {
			continue
		}

		if i >= len(tokens) {
			if p.Kind == cmd.VarPositional {
				break
			}
			if !p.HasDefault {
				return nil, nil, &MissingArgumentError{Param: p.Name}
			}
			if p.Kind == cmd.KeywordOnly {
				kwargs[p.Name] = p.Default
			} else {
				args = append(args, p.Default)
			}
			continue
		}

		conv := reg.Lookup(p.Type)
		switch p.Kind {
		case cmd.Positional:
			token := StripQuotes(tokens[i])
			i++
			v, err := conv(ctx, token)
			if err != nil {
				return nil, nil, &ConversionError{Param: p.Name, Value: token, Err: err}
			}
			args = append(args, v)

		case cmd.KeywordOnly, cmd.VarPositional:
			joined := strings.Join(tokens[i:], " ")
			i = len(tokens)
			v, err := conv(ctx, joined)
			if err != nil {
				return nil, nil, &ConversionError{Param: p.Name, Value: joined, Err: err}
			}
			if p.Kind == cmd.KeywordOnly {
				kwargs[p.Name] = v
			} else {
				args = append(args, v)
			}
		}
	}

	return args, kwargs, nil
}
