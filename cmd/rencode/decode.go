package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/rawbytedev/rencode"
	"github.com/rawbytedev/rencode/pkg/compactwire"
	"github.com/spf13/pflag"
)

func decodeCommand() *command {
	var (
		to      string
		frame   bool
		offset  int
		compact bool
	)
	return &command{
		name:    "decode",
		summary: "convert rencode to JSON, YAML or CBOR",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&to, "to", "json", "output format: json, yaml or cbor")
			fs.BoolVar(&frame, "frame", false, "input is a stream of compactwire data frames")
			fs.IntVar(&offset, "offset", 0, "byte offset of the value in unframed input")
			fs.BoolVarP(&compact, "compact", "c", false, "compact JSON output (no indentation)")
		},
		run: func(e *env, args []string) error {
			to = e.str("to", to, e.cfg.To)
			frame = e.boolean("frame", frame, e.cfg.Frame)
			compact = e.boolean("compact", compact, e.cfg.Compact)

			data, source, err := e.readInput(args)
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("empty input: expected rencode data on %s", source)
			}

			var values []rencode.Value
			if frame {
				if offset != 0 {
					return errors.New("--offset cannot be combined with --frame")
				}
				values, err = decodeFrames(e, data)
			} else {
				var v rencode.Value
				v, err = decodeAt(e, data, offset)
				values = []rencode.Value{v}
			}
			if err != nil {
				return err
			}
			for _, v := range values {
				if err := writeOutput(e.stdout, v, to, compact); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func decodeAt(e *env, data []byte, offset int) (rencode.Value, error) {
	v, next, err := e.decoder().DecodeAt(data, offset)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if next < len(data) {
		e.logger.Debug("ignoring trailing bytes", "offset", next, "count", len(data)-next)
	}
	return v, nil
}

// decodeFrames reads consecutive data frames and returns every value they
// carry, in order.
func decodeFrames(e *env, data []byte) ([]rencode.Value, error) {
	r := bytes.NewReader(data)
	dec := e.decoder()
	var out []rencode.Value
	for n := 0; ; n++ {
		f, err := compactwire.ReadFrame(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", n, err)
		}
		vs, err := compactwire.DecodeValuesWith(dec, f)
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", n, err)
		}
		e.logger.Debug("decoded frame", "index", n, "bytes", len(f), "values", len(vs))
		out = append(out, vs...)
	}
	if len(out) == 0 {
		return nil, errors.New("no data frames in input")
	}
	return out, nil
}
