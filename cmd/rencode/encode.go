package main

import (
	"fmt"

	"github.com/rawbytedev/rencode"
	"github.com/rawbytedev/rencode/pkg/compactwire"
	"github.com/spf13/pflag"
)

func encodeCommand() *command {
	var (
		from     string
		frame    bool
		compress string
	)
	return &command{
		name:    "encode",
		summary: "convert JSON, YAML or CBOR to rencode",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&from, "from", "json", "input format: json, yaml or cbor")
			fs.BoolVar(&frame, "frame", false, "wrap the output in a compactwire data frame")
			fs.StringVar(&compress, "compress", "none", "frame compression: none, zstd or lz4 (implies --frame)")
		},
		run: func(e *env, args []string) error {
			from = e.str("from", from, e.cfg.From)
			compress = e.str("compress", compress, e.cfg.Compress)
			frame = e.boolean("frame", frame, e.cfg.Frame)

			alg, err := compactwire.ParseAlgorithm(compress)
			if err != nil {
				return err
			}
			if alg != compactwire.AlgNone && !frame {
				e.logger.Debug("compression requested, framing output", "compress", alg)
				frame = true
			}

			data, source, err := e.readInput(args)
			if err != nil {
				return err
			}
			v, err := parseInput(data, from)
			if err != nil {
				return err
			}

			var out []byte
			if frame {
				out, err = compactwire.EncodeValue(v, alg.Flag())
			} else {
				out, err = rencode.Encode(v)
			}
			if err != nil {
				return fmt.Errorf("encode value: %w", err)
			}
			e.logger.Debug("encoded", "source", source, "from", from, "in_bytes", len(data), "out_bytes", len(out), "framed", frame)
			_, err = e.stdout.Write(out)
			return err
		},
	}
}
