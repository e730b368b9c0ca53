package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrUnparseable is returned when no decoder accepts the input.
var ErrUnparseable = errors.New("no decoder accepted the input")

// decoder turns loose text into standard JSON.
type decoder struct {
	name string
	fn   func(string) ([]byte, error)
}

// decoders run strictest first. json-repair fixes quoting, trailing commas,
// unclosed brackets and TRUE/Null spellings; Hjson additionally accepts
// comments, unquoted strings and missing commas.
var decoders = []decoder{
	{"json", func(s string) ([]byte, error) { return []byte(s), nil }},
	{"repair", func(s string) ([]byte, error) {
		out, err := jsonrepair.RepairJSON(s)
		return []byte(out), err
	}},
	{"hjson", func(s string) ([]byte, error) {
		var v interface{}
		if err := hjson.Unmarshal([]byte(s), &v); err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}},
}

// DecodeLenient decodes input into target with the first decoder that yields
// valid JSON for it, and returns that decoder's name.
func DecodeLenient(input string, target interface{}) (string, error) {
	var errs []error
	for _, d := range decoders {
		data, err := d.fn(input)
		if err == nil {
			err = json.Unmarshal(data, target)
		}
		if err == nil {
			return d.name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
	}
	return "", fmt.Errorf("%w: %w", ErrUnparseable, errors.Join(errs...))
}
