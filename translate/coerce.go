package translate

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// integerTokens is the integer family of the XML-Schema primitive set. The
// set is fixed and exhaustive; every member coerces to an arbitrary
// precision integer.
var integerTokens = map[string]bool{
	"integer":            true,
	"nonNegativeInteger": true,
	"positiveInteger":    true,
	"negativeInteger":    true,
	"nonPositiveInteger": true,
	"long":               true,
	"int":                true,
	"short":              true,
	"byte":               true,
	"unsignedLong":       true,
	"unsignedInt":        true,
	"unsignedShort":      true,
	"unsignedByte":       true,
}

// coerce converts element or attribute text to its JSON value per the
// base-type token. Text that does not conform to the token's lexical rules
// falls back to a string literal rather than failing the translation.
func coerce(text, token string) any {
	if token == "" {
		return text
	}

	if item, ok := strings.CutPrefix(token, "list/"); ok {
		return coerceList(text, item)
	}

	switch {
	case token == "boolean":
		return coerceBool(text)

	case token == "decimal":
		d, err := decimal.NewFromString(text)
		if err != nil {
			return text
		}

		return json.Number(d.String())

	case token == "double" || token == "float":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return text
		}

		return f

	case integerTokens[token]:
		i, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return text
		}

		return json.Number(i.String())
	}

	return text
}

// coerceList splits text on runs of whitespace and coerces each token. A
// single token collapses to a scalar rather than a one-element array.
func coerceList(text, item string) any {
	fields := strings.Fields(text)

	if len(fields) == 1 {
		return coerce(fields[0], item)
	}

	out := make([]any, 0, len(fields))

	for _, f := range fields {
		out = append(out, coerce(f, item))
	}

	return out
}

// coerceBool parses the XML-Schema boolean lexical space: true, false, 1,
// and 0.
func coerceBool(text string) any {
	switch text {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}

	return text
}
