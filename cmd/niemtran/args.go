package main

import (
	"fmt"
	"strings"
)

// splitArgs applies the shared positional rule: with exactly one positional
// argument it is the schema-or-namespace list; with two or more, the first
// is the catalog-file list and the rest are schema lists. Each list is
// split on the separator character.
func splitArgs(sep string, args []string) (catalogs, schemas []string, err error) {
	if len(sep) != 1 {
		return nil, nil, fmt.Errorf("separator must be a single character, got %q", sep)
	}

	switch len(args) {
	case 0:
		return nil, nil, fmt.Errorf("expected at least one schema or namespace argument")

	case 1:
		return nil, splitList(sep, args[0]), nil

	default:
		catalogs = splitList(sep, args[0])

		for _, a := range args[1:] {
			schemas = append(schemas, splitList(sep, a)...)
		}

		return catalogs, schemas, nil
	}
}

// splitList splits one argument on the separator, dropping empty tokens.
func splitList(sep, arg string) []string {
	var out []string

	for _, tok := range strings.Split(arg, sep) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		out = append(out, tok)
	}

	return out
}
