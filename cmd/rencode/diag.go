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

func diagCommand() *command {
	var frame bool
	return &command{
		name:    "diag",
		summary: "print an annotated dump of rencode data",
		flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&frame, "frame", false, "input is a stream of compactwire data frames")
		},
		run: func(e *env, args []string) error {
			frame = e.boolean("frame", frame, e.cfg.Frame)
			data, _, err := e.readInput(args)
			if err != nil {
				return err
			}
			if !frame {
				return writeDiag(e.stdout, data)
			}
			return diagFrames(e, data)
		},
	}
}

func writeDiag(w io.Writer, data []byte) error {
	out, err := rencode.Diag(data)
	if _, werr := io.WriteString(w, out); werr != nil {
		return werr
	}
	if err != nil {
		return fmt.Errorf("diag: %w", err)
	}
	return nil
}

func diagFrames(e *env, data []byte) error {
	r := bytes.NewReader(data)
	var d compactwire.DataFrame
	for n := 0; ; n++ {
		f, err := compactwire.ReadFrame(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame %d: %w", n, err)
		}
		payload, offsets, flags, err := d.DecodeDataFrame(f)
		if err != nil {
			return fmt.Errorf("decode frame %d: %w", n, err)
		}
		fmt.Fprintf(e.stdout, "# frame %d: %d bytes, flags %#02x, payload %d bytes\n", n, len(f), flags, len(payload))
		if flags&compactwire.FlagHasOffsetTable == 0 {
			offsets = []uint32{0}
		}
		for i, off := range offsets {
			if int(off) >= len(payload) {
				return fmt.Errorf("frame %d: offset %d past payload", n, off)
			}
			fmt.Fprintf(e.stdout, "# value %d at payload offset %d\n", i, off)
			if err := writeDiag(e.stdout, payload[off:]); err != nil {
				return err
			}
		}
	}
}
