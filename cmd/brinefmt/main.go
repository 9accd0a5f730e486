// brinefmt converts values between their binary and text forms.
//
// By default it parses a text value from the input and writes the binary
// encoding. With --decode it goes the other way. Input is a file argument
// or stdin; output is --out or stdout.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/brine-format/brine"
	"github.com/brine-format/brine/text"
)

func main() {
	if err := run(); err != nil {
		if err != pflag.ErrHelp {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	var (
		decode   bool
		useHex   bool
		validate bool
		asCBOR   bool
		maxDepth int
		outPath  string
		verbose  bool
	)
	flags := pflag.NewFlagSet("brinefmt", pflag.ContinueOnError)
	flags.BoolVarP(&decode, "decode", "d", false, "decode binary input to text")
	flags.BoolVar(&useHex, "hex", false, "binary side is hex instead of raw bytes")
	flags.BoolVar(&validate, "validate", false, "check that binary input decodes; write nothing")
	flags.BoolVar(&asCBOR, "cbor", false, "with --decode, emit CBOR instead of text")
	flags.IntVar(&maxDepth, "max-depth", 0, "nesting limit for decoding (0 means the default)")
	flags.StringVarP(&outPath, "out", "o", "", "write output to this file instead of stdout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: brinefmt [flags] [file]\n\n%s", flags.FlagUsages())
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	input, name, err := readInput(flags.Args())
	if err != nil {
		return err
	}
	log.Debug().Str("input", name).Int("bytes", len(input)).Msg("read input")

	if validate {
		return runValidate(log, input, useHex, maxDepth)
	}

	var output []byte
	if decode {
		output, err = runDecode(log, input, useHex, asCBOR, maxDepth)
	} else {
		output, err = runEncode(log, input, useHex)
	}
	if err != nil {
		return err
	}
	return writeOutput(outPath, output)
}

func readInput(args []string) ([]byte, string, error) {
	if len(args) > 1 {
		return nil, "", fmt.Errorf("at most one input file, got %d", len(args))
	}
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		return data, args[0], err
	}
	data, err := io.ReadAll(os.Stdin)
	return data, "stdin", err
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func binaryInput(input []byte, useHex bool) ([]byte, error) {
	if !useHex {
		return input, nil
	}
	return hex.DecodeString(strings.TrimSpace(string(input)))
}

func runValidate(log zerolog.Logger, input []byte, useHex bool, maxDepth int) error {
	wire, err := binaryInput(input, useHex)
	if err != nil {
		return err
	}
	v, err := brine.DecodeOptions{MaxDepth: maxDepth}.FromBytes(wire)
	if err != nil {
		return err
	}
	log.Info().Stringer("type", v.Type()).Int("bytes", len(wire)).Msg("valid")
	return nil
}

func runDecode(log zerolog.Logger, input []byte, useHex, asCBOR bool, maxDepth int) ([]byte, error) {
	wire, err := binaryInput(input, useHex)
	if err != nil {
		return nil, err
	}
	v, err := brine.DecodeOptions{MaxDepth: maxDepth}.FromBytes(wire)
	if err != nil {
		return nil, err
	}
	log.Debug().Stringer("type", v.Type()).Msg("decoded")
	if asCBOR {
		return cbor.Marshal(plain(v))
	}
	return []byte(text.Format(v) + "\n"), nil
}

func runEncode(log zerolog.Logger, input []byte, useHex bool) ([]byte, error) {
	v, err := text.Parse(string(input))
	if err != nil {
		return nil, err
	}
	wire := brine.ToBytes(v)
	log.Debug().Stringer("type", v.Type()).Int("bytes", len(wire)).Msg("encoded")
	if useHex {
		return []byte(hex.EncodeToString(wire) + "\n"), nil
	}
	return wire, nil
}

// plain lowers a value into ordinary Go types for CBOR export. 128-bit
// integers become bignums; struct fields keep their numeric identifiers
// as map keys.
func plain(v brine.Value) any {
	switch v := v.(type) {
	case brine.Null:
		return nil
	case brine.Bool:
		return bool(v)
	case brine.U8:
		return uint8(v)
	case brine.U16:
		return uint16(v)
	case brine.U32:
		return uint32(v)
	case brine.U64:
		return uint64(v)
	case brine.I8:
		return int8(v)
	case brine.I16:
		return int16(v)
	case brine.I32:
		return int32(v)
	case brine.I64:
		return int64(v)
	case brine.U128:
		return big128(v[:], false)
	case brine.I128:
		return big128(v[:], true)
	case brine.F32:
		return float32(v)
	case brine.F64:
		return float64(v)
	case brine.String:
		return string(v)
	case brine.Timestamp:
		return time.Unix(int64(v), 0).UTC()
	case brine.Array:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = plain(elem)
		}
		return out
	case brine.Map:
		// Pairs stay an array of arrays; keys may be compound values,
		// which Go maps cannot hold.
		out := make([][2]any, len(v))
		for i, e := range v {
			out[i] = [2]any{plain(e.Key), plain(e.Value)}
		}
		return out
	case brine.Struct:
		out := make(map[uint64]any, len(v))
		for id, field := range v {
			out[id] = plain(field)
		}
		return out
	case brine.Enum:
		out := map[string]any{"variant": v.Variant}
		if v.Payload != nil {
			out["payload"] = plain(v.Payload)
		}
		return out
	default:
		panic(fmt.Sprintf("brinefmt: unhandled value %T", v))
	}
}

func big128(le []byte, signed bool) *big.Int {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	n := new(big.Int).SetBytes(be)
	if signed && le[len(le)-1]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(le)*8)))
	}
	return n
}
