package engine

import "strings"

// EvaluateCondition decides whether a flag expression holds for the given
// flag set. The current content grammar is a single flag token (presence
// test); an empty or blank expression means no gating. The function is pure
// and deterministic, so richer boolean grammars can be added here without
// touching any caller.
func EvaluateCondition(expr string, flags FlagSet) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true
	}
	return flags.Has(expr)
}
