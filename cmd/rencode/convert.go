package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/rawbytedev/rencode"
	"gopkg.in/yaml.v3"
)

var cborDecMode cbor.DecMode

func init() {
	var err error
	cborDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("rencode: cbor decoder initialization failed: " + err.Error())
	}
}

// parseInput converts a JSON, YAML or CBOR document into a Value.
func parseInput(data []byte, format string) (rencode.Value, error) {
	var doc any
	switch format {
	case "", "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errors.New("parse JSON: trailing data after document")
		}
		doc = fromJSONNumbers(doc)
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case "cbor":
		if err := cborDecMode.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse CBOR: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown input format %q (want json, yaml or cbor)", format)
	}
	v, err := rencode.ValueOf(doc)
	if err != nil {
		return nil, fmt.Errorf("convert %s document: %w", format, err)
	}
	return v, nil
}

// fromJSONNumbers replaces json.Number with int64, *big.Int or float64
// so integers keep their exact value.
func fromJSONNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if b, ok := new(big.Int).SetString(x.String(), 10); ok {
			return b
		}
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	case []any:
		for i, elem := range x {
			x[i] = fromJSONNumbers(elem)
		}
		return x
	case map[string]any:
		for k, elem := range x {
			x[k] = fromJSONNumbers(elem)
		}
		return x
	}
	return v
}

// writeOutput renders v as JSON, YAML or CBOR.
func writeOutput(w io.Writer, v rencode.Value, format string, compact bool) error {
	doc := rencode.Interface(v)
	switch format {
	case "", "json":
		var out []byte
		var err error
		if compact {
			out, err = json.Marshal(textKeys(doc))
		} else {
			out, err = json.MarshalIndent(textKeys(doc), "", "  ")
		}
		if err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlSafe(doc)); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		return enc.Close()
	case "cbor":
		out, err := cbor.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode CBOR: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want json, yaml or cbor)", format)
	}
}

// textKeys turns map[any]any into map[string]any with fmt.Sprint'd keys,
// since JSON objects only have string keys.
func textKeys(v any) any {
	switch x := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, elem := range x {
			out[fmt.Sprint(k)] = textKeys(elem)
		}
		return out
	case map[string]any:
		for k, elem := range x {
			x[k] = textKeys(elem)
		}
		return x
	case []any:
		for i, elem := range x {
			x[i] = textKeys(elem)
		}
		return x
	}
	return v
}

// yamlSafe renders integers beyond int64 as decimal strings.
func yamlSafe(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case map[any]any:
		for k, elem := range x {
			x[k] = yamlSafe(elem)
		}
		return x
	case map[string]any:
		for k, elem := range x {
			x[k] = yamlSafe(elem)
		}
		return x
	case []any:
		for i, elem := range x {
			x[i] = yamlSafe(elem)
		}
		return x
	}
	return v
}
