package docxgen

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DeltaOp is a single normalized insert operation of a delta.
type DeltaOp struct {
	Insert string
	Bold   bool
	Italic bool
}

type rawDelta struct {
	Ops []json.RawMessage `json:"ops"`
}

type rawOp struct {
	Insert     *string        `json:"insert"`
	Attributes *rawAttributes `json:"attributes"`
}

type rawAttributes struct {
	Bold   *bool `json:"bold"`
	Italic *bool `json:"italic"`
}

// ParseDelta decodes a delta of the form
//
//	{"ops":[{"insert":"text","attributes":{"bold":true,"italic":false}}, ...]}
//
// Unknown fields are ignored and missing attributes default to false.
// Inserted text is normalized to NFC. Any structural problem is reported
// as a *ParseError.
func ParseDelta(input string) ([]DeltaOp, error) {
	var delta rawDelta
	if err := json.Unmarshal([]byte(input), &delta); err != nil {
		return nil, jsonParseError(-1, err)
	}
	if delta.Ops == nil {
		return nil, NewParseError("missing required field \"ops\"", -1, 0, nil)
	}

	ops := make([]DeltaOp, 0, len(delta.Ops))
	for i, raw := range delta.Ops {
		var op rawOp
		if err := json.Unmarshal(raw, &op); err != nil {
			return nil, jsonParseError(i, err)
		}
		if op.Insert == nil {
			return nil, NewParseError("missing required field \"insert\"", i, 0, nil)
		}

		parsed := DeltaOp{Insert: norm.NFC.String(*op.Insert)}
		if op.Attributes != nil {
			if op.Attributes.Bold != nil {
				parsed.Bold = *op.Attributes.Bold
			}
			if op.Attributes.Italic != nil {
				parsed.Italic = *op.Attributes.Italic
			}
		}
		ops = append(ops, parsed)
	}

	return ops, nil
}

func jsonParseError(op int, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &syntaxErr):
		return NewParseError(syntaxErr.Error(), op, syntaxErr.Offset, err)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "value"
		}
		msg := fmt.Sprintf("field %q must be %s, got %s", field, jsonKind(typeErr.Type.Kind().String()), typeErr.Value)
		return NewParseError(msg, op, typeErr.Offset, err)
	default:
		return NewParseError(err.Error(), op, 0, err)
	}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "a string"
	case "bool":
		return "a boolean"
	case "slice":
		return "an array"
	case "struct", "map":
		return "an object"
	default:
		return goKind
	}
}
