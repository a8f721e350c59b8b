package plugin

import "strings"

// Argument tokens recognized by the output plugins.
const (
	TokenRipple = "ripple"
	TokenEdge   = "edge"
)

// Options is the typed form of the argument list a host passes at init.
// It is immutable for the lifetime of an instance.
type Options struct {
	Ripple  bool
	Edge    bool
	Unknown []string
}

// ParseOptions converts argument tokens into Options. Matching is
// case-insensitive and ignores surrounding whitespace; empty tokens are skipped.
func ParseOptions(args []string) Options {
	var o Options
	for _, arg := range args {
		tok := strings.ToLower(strings.TrimSpace(arg))
		switch tok {
		case "":
		case TokenRipple:
			o.Ripple = true
		case TokenEdge:
			o.Edge = true
		default:
			o.Unknown = append(o.Unknown, arg)
		}
	}
	return o
}

// Tokens returns the recognized options as argument tokens.
func (o Options) Tokens() []string {
	var toks []string
	if o.Ripple {
		toks = append(toks, TokenRipple)
	}
	if o.Edge {
		toks = append(toks, TokenEdge)
	}
	return toks
}

// Merge returns o with any option set in other also set.
func (o Options) Merge(other Options) Options {
	o.Ripple = o.Ripple || other.Ripple
	o.Edge = o.Edge || other.Edge
	o.Unknown = append(append([]string(nil), o.Unknown...), other.Unknown...)
	return o
}
