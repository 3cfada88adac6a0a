package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "scale"

	TypeKey      = "type"
	ValueKey     = "value"
	HexKey       = "hex"
	OutputKey    = "output"
	LenientKey   = "lenient"
	StrictBitKey = "strict-bitvec"
	DepthKey     = "depth-limit"
	HasherKey    = "hasher"
	RegistryKey  = "registry"
	LogLevelKey  = "log-level"
)

func buildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("scale", pflag.ContinueOnError)
	fs.String(TypeKey, "", "Type expression, e.g. \"Vec<Compact<u32>>\" or a registry name")
	fs.String(ValueKey, "", "JSON value to encode")
	fs.String(HexKey, "", "Hex input, with or without a 0x prefix")
	fs.String(OutputKey, "json", "Decoded value format. Should be one of {json, yaml}")
	fs.Bool(LenientKey, false, "Accept non-minimal compact integers")
	fs.Bool(StrictBitKey, false, "Reject bit-vectors whose padding bits are set")
	fs.Int(DepthKey, 0, "Deepest nesting of recursive values, 0 for the library default")
	fs.String(HasherKey, "blake2_128_concat", "Storage hasher applied by the hash command")
	fs.String(RegistryKey, "", "YAML file with named type definitions")
	fs.String(LogLevelKey, "warn", "The log level. Should be one of {debug, info, warn, error}")
	return fs
}

// buildViper parses args and binds the flags, so every key can also come
// from a SCALE_ environment variable.
func buildViper(args []string) (*viper.Viper, []string, error) {
	fs := buildFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, nil, err
	}
	return v, fs.Args(), nil
}
