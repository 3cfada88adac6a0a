package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/oy3o/scale"
	"github.com/oy3o/scale/internal/schema"
	"github.com/oy3o/scale/storage"
)

var (
	errNoCommand  = errors.New("expected a command: encode, decode, bound or hash")
	errMissingArg = errors.New("missing required flag")
)

type app struct {
	v   *viper.Viper
	log *zap.Logger
	reg *schema.Registry
	out io.Writer
}

func run(args []string, stdout, stderr io.Writer) error {
	v, rest, err := buildViper(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errNoCommand
	}
	log, err := newLogger(v.GetString(LogLevelKey), stderr)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	a := &app{v: v, log: log, out: stdout}
	if a.reg, err = a.loadRegistry(); err != nil {
		return err
	}

	switch cmd := rest[0]; cmd {
	case "encode":
		return a.encode()
	case "decode":
		return a.decode()
	case "bound":
		return a.bound()
	case "hash":
		return a.hash()
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errNoCommand)
	}
}

func (a *app) loadRegistry() (*schema.Registry, error) {
	path := a.v.GetString(RegistryKey)
	if path == "" {
		return schema.NewRegistry(), nil
	}
	reg, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	a.log.Debug("loaded registry", zap.String("path", path), zap.Strings("types", reg.Names()))
	return reg, nil
}

func (a *app) require(key string) (string, error) {
	s := a.v.GetString(key)
	if s == "" {
		return "", fmt.Errorf("%w --%s", errMissingArg, key)
	}
	return s, nil
}

func (a *app) codec() (scale.Codec[any], error) {
	expr, err := a.require(TypeKey)
	if err != nil {
		return nil, err
	}
	c, err := a.reg.Codec(expr)
	if err != nil {
		return nil, err
	}
	a.log.Debug("compiled type", zap.String("type", expr), zap.Stringer("bound", c.MaxEncodedLen()))
	return c, nil
}

func (a *app) input() ([]byte, error) {
	s, err := a.require(HexKey)
	if err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", HexKey, err)
	}
	return data, nil
}

func (a *app) encode() error {
	c, err := a.codec()
	if err != nil {
		return err
	}
	raw, err := a.require(ValueKey)
	if err != nil {
		return err
	}
	val, err := schema.ParseJSON([]byte(raw))
	if err != nil {
		return err
	}
	data, err := scale.Encode(c, val)
	if err != nil {
		return err
	}
	a.log.Info("encoded", zap.Int("bytes", len(data)))
	_, err = fmt.Fprintf(a.out, "0x%x\n", data)
	return err
}

func (a *app) decode() error {
	c, err := a.codec()
	if err != nil {
		return err
	}
	data, err := a.input()
	if err != nil {
		return err
	}
	r := scale.NewSliceReader(data)
	if a.v.GetBool(LenientKey) {
		r = r.WithLenientCompact()
	}
	if a.v.GetBool(StrictBitKey) {
		r = r.WithStrictBitVec()
	}
	r = r.WithDepthLimit(a.v.GetInt(DepthKey))
	val, err := scale.DecodeWith(r, c)
	if err != nil {
		return err
	}
	a.log.Info("decoded", zap.Int64("bytes", r.Count()))

	var out []byte
	switch format := a.v.GetString(OutputKey); format {
	case "json":
		if out, err = json.Marshal(schema.Plain(val)); err == nil {
			out = append(out, '\n')
		}
	case "yaml":
		out, err = yaml.Marshal(schema.Plain(val))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = a.out.Write(out)
	return err
}

func (a *app) bound() error {
	expr, err := a.require(TypeKey)
	if err != nil {
		return err
	}
	b, err := a.reg.Bound(expr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, b)
	return err
}

func (a *app) hash() error {
	h, err := storage.HasherByName(a.v.GetString(HasherKey))
	if err != nil {
		return err
	}
	data, err := a.input()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "0x%x\n", h.Hash(data))
	return err
}
