// starwirectl inspects game protocol captures with the starwire codecs.
//
//	starwirectl list
//	starwirectl decode   --schema NAME --hex HEX
//	starwirectl encode   --schema NAME --json JSON
//	starwirectl envelope --id N --hex HEX [--compressed]
//	starwirectl envelope --schema NAME --json JSON
//	starwirectl unwrap   --hex HEX
//	starwirectl unwrap   --follow [--file PATH|-] [--metrics-addr ADDR]
//	starwirectl init     --path FILE
//
// Every command accepts --config FILE (TOML). --file - reads stdin.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danmuck/starwire/internal/config"
	"github.com/danmuck/starwire/internal/logging"
	"github.com/danmuck/starwire/internal/observability"
	"github.com/danmuck/starwire/internal/protocol/codec"
	"github.com/danmuck/starwire/internal/protocol/frame"
	"github.com/danmuck/starwire/internal/protocol/schema"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage: starwirectl <list|decode|encode|envelope|unwrap|init> [flags]")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "starwirectl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath  string
		schemaName  string
		hexInput    string
		jsonInput   string
		inputFile   string
		outPath     string
		metricsAddr string
		id          int
		compressed  bool
		overwrite   bool
		follow      bool
	)
	fs.StringVar(&configPath, "config", "", "path to a TOML config file")
	fs.StringVarP(&schemaName, "schema", "s", "", "message name (see list)")
	fs.StringVar(&hexInput, "hex", "", "hex encoded input bytes")
	fs.StringVar(&jsonInput, "json", "", "JSON object to encode")
	fs.StringVarP(&inputFile, "file", "f", "", "read raw input bytes from a file")
	fs.StringVar(&outPath, "path", "starwire.toml", "config file to write (init)")
	fs.IntVar(&id, "id", -1, "envelope packet id")
	fs.BoolVar(&compressed, "compressed", false, "mark envelope payload as compressed")
	fs.BoolVar(&overwrite, "overwrite", false, "overwrite an existing config (init)")
	fs.BoolVar(&follow, "follow", false, "stream envelopes until end of input (unwrap)")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address while following")
	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	setupLogging(cfg)
	if schemaName == "" {
		schemaName = cfg.DefaultSchema
	}
	compressed = compressed || cfg.Compressed
	log.Debug().Str("cmd", cmd).Str("schema", schemaName).Msg("starwirectl")

	switch cmd {
	case "list":
		return listMessages(stdout)
	case "decode":
		m, err := lookup(schemaName)
		if err != nil {
			return err
		}
		input, err := readInput(hexInput, inputFile, stdin)
		if err != nil {
			return err
		}
		rec, err := m.Decode(input)
		if err != nil {
			return err
		}
		return render(stdout, cfg.Output, rec)
	case "encode":
		m, err := lookup(schemaName)
		if err != nil {
			return err
		}
		wire, err := encodeJSON(m, jsonInput)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(wire))
		return err
	case "envelope":
		p, err := envelopePacket(schemaName, id, hexInput, inputFile, jsonInput, stdin)
		if err != nil {
			return err
		}
		ctx := codec.NewContext()
		ctx.SetCompressed(compressed)
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(frame.Encode(p, ctx)))
		return err
	case "unwrap":
		if follow {
			r, closeInput, err := openInput(hexInput, inputFile, stdin)
			if err != nil {
				return err
			}
			defer closeInput()
			return followFrames(stdout, cfg, r, metricsAddr)
		}
		if metricsAddr != "" {
			return errors.New("--metrics-addr needs --follow")
		}
		input, err := readInput(hexInput, inputFile, stdin)
		if err != nil {
			return err
		}
		return unwrapFrames(stdout, cfg, input)
	case "init":
		if err := config.WriteTemplate(outPath, overwrite); err != nil {
			return err
		}
		_, err := fmt.Fprintf(stdout, "wrote %s\n", outPath)
		return err
	default:
		return errUsage
	}
}

func setupLogging(cfg config.Config) {
	lc := logging.DefaultConfig(logging.ProfileRuntime)
	lc.App = "starwirectl"
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		lc.Level = lvl
	}
	logging.ApplyEnvOverrides(&lc)
	logging.Apply(lc)
}

func lookup(name string) (schema.Message, error) {
	if name == "" {
		return schema.Message{}, errors.New("missing --schema")
	}
	m, ok := schema.Lookup(name)
	if !ok {
		return schema.Message{}, fmt.Errorf("%w: %q", schema.ErrUnknownMessage, name)
	}
	return m, nil
}

func readInput(hexInput, path string, stdin io.Reader) ([]byte, error) {
	switch {
	case hexInput != "" && path != "":
		return nil, errors.New("use one of --hex or --file")
	case path == "-":
		return io.ReadAll(stdin)
	case path != "":
		return os.ReadFile(path)
	default:
		clean := strings.Join(strings.Fields(hexInput), "")
		b, err := hex.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("parse --hex: %w", err)
		}
		return b, nil
	}
}

func listMessages(w io.Writer) error {
	for _, m := range schema.All() {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", m.ID, m.Name(), strings.Join(m.Record.Fields(), ",")); err != nil {
			return err
		}
	}
	return nil
}

func envelopePacket(schemaName string, id int, hexInput, path, jsonInput string, stdin io.Reader) (frame.Packet, error) {
	var payload []byte
	if jsonInput != "" {
		m, err := lookup(schemaName)
		if err != nil {
			return frame.Packet{}, err
		}
		if payload, err = encodeJSON(m, jsonInput); err != nil {
			return frame.Packet{}, err
		}
		if id < 0 {
			id = int(m.ID)
		}
	} else {
		var err error
		if payload, err = readInput(hexInput, path, stdin); err != nil {
			return frame.Packet{}, err
		}
	}
	if id < 0 || id > 0xff {
		return frame.Packet{}, fmt.Errorf("envelope id must be 0-255, got %d", id)
	}
	return frame.Packet{ID: uint8(id), Data: payload}, nil
}

func unwrapFrames(w io.Writer, cfg config.Config, input []byte) error {
	s, err := codec.NewStream(input)
	if err != nil {
		return err
	}
	var frames []any
	for s.Lookahead() > 0 {
		ctx := codec.NewContext()
		p, err := frame.Decode(s, ctx, cfg.Limits())
		if err != nil {
			return fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, frameRecord(p, ctx))
	}
	return render(w, cfg.Output, frames)
}

// openInput streams from a file, stdin (--file - or no input flag) or the
// --hex bytes.
func openInput(hexInput, path string, stdin io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case hexInput != "" && path != "":
		return nil, noop, errors.New("use one of --hex or --file")
	case hexInput != "":
		b, err := readInput(hexInput, "", stdin)
		if err != nil {
			return nil, noop, err
		}
		return bytes.NewReader(b), noop, nil
	case path == "" || path == "-":
		return stdin, noop, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, noop, err
		}
		return f, func() { _ = f.Close() }, nil
	}
}

// followFrames decodes envelopes as they arrive and writes one JSON line per
// frame. It returns at end of input or on the first malformed frame.
func followFrames(w io.Writer, cfg config.Config, r io.Reader, metricsAddr string) error {
	if metricsAddr != "" {
		srv, err := observability.ServeMetrics(metricsAddr)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Close(ctx); err != nil {
				log.Warn().Err(err).Msg("metrics server close")
			}
		}()
	}

	s, err := codec.NewStream(r)
	if err != nil {
		return err
	}
	for n := 0; s.Lookahead() > 0; n++ {
		ctx := codec.NewContext()
		start, before := time.Now(), s.Offset()
		p, err := frame.Decode(s, ctx, cfg.Limits())
		observability.RecordDecode(envelopeMetric, s.Offset()-before, time.Since(start), err == nil)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
		if err := render(w, config.OutputJSON, frameRecord(p, ctx)); err != nil {
			return err
		}
	}
	return nil
}

const envelopeMetric = "Envelope"

func frameRecord(p frame.Packet, ctx *codec.Context) *codec.Record {
	return codec.RecordOf(
		"id", p.ID,
		"compressed", ctx.Compressed(),
		"length", len(p.Data),
		"data", hex.EncodeToString(p.Data),
	)
}
