package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
	"gopkg.in/yaml.v3"

	"github.com/oy3o/scale"
)

// ErrUnknownType is returned when an expression names a type the registry
// does not define.
var ErrUnknownType = errors.New("schema: unknown type")

// FieldDef is one member of a named struct or of an inline variant payload.
type FieldDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// VariantDef is one variant of a named enum. A variant carries no payload,
// a single payload type, or inline fields. Index defaults to the variant's
// position in the list.
type VariantDef struct {
	Name   string     `yaml:"name"`
	Type   string     `yaml:"type,omitempty"`
	Fields []FieldDef `yaml:"fields,omitempty"`
	Index  *int       `yaml:"index,omitempty"`
}

// Def is a named type: exactly one of Struct, Enum or Alias is set.
type Def struct {
	Struct []FieldDef   `yaml:"struct,omitempty"`
	Enum   []VariantDef `yaml:"enum,omitempty"`
	Alias  string       `yaml:"alias,omitempty"`
}

type document struct {
	Types map[string]Def `yaml:"types"`
}

// Registry holds named types and the codecs compiled from them.
//
//	types:
//	  Transfer:
//	    struct:
//	      - {name: dest, type: "[u8; 32]"}
//	      - {name: value, type: "Compact<u128>"}
//	  Call:
//	    enum:
//	      - {name: Transfer, type: Transfer}
//	      - {name: Remark, type: bytes, index: 7}
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]Def
	codecs *xsync.Map[string, scale.Codec[any]]
}

// NewRegistry returns an empty registry. Built-in types need no definition.
func NewRegistry() *Registry {
	return &Registry{
		defs:   make(map[string]Def),
		codecs: xsync.NewMap[string, scale.Codec[any]](),
	}
}

// Load reads type definitions from YAML. Unknown keys are rejected.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("schema: parse registry: %w", err)
	}
	reg := NewRegistry()
	for name, def := range doc.Types {
		if err := reg.Define(name, def); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFile reads type definitions from a YAML file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Define adds or replaces a named type. Its member expressions must parse,
// but names they refer to may be defined later.
func (reg *Registry) Define(name string, def Def) error {
	if err := validate(name, def); err != nil {
		return err
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.defs[name] = def
	reg.codecs.Clear()
	return nil
}

// Names returns the defined type names.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.defs))
	for name := range reg.defs {
		names = append(names, name)
	}
	return names
}

func (reg *Registry) lookup(name string) (Def, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	def, ok := reg.defs[name]
	return def, ok
}

// Codec compiles a type expression. Compiled codecs are cached until the
// registry changes.
func (reg *Registry) Codec(expr string) (scale.Codec[any], error) {
	if c, ok := reg.codecs.Load(expr); ok {
		return c, nil
	}
	t, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	c, err := reg.Compile(t)
	if err != nil {
		return nil, err
	}
	reg.codecs.Store(expr, c)
	return c, nil
}

// Compile builds the codec of a parsed type.
func (reg *Registry) Compile(t *Type) (scale.Codec[any], error) {
	c := &compiler{reg: reg, named: make(map[string]*namedSlot)}
	return c.compile(t)
}

// Bound returns the maximum encoded length of a type expression.
func (reg *Registry) Bound(expr string) (scale.Bound, error) {
	c, err := reg.Codec(expr)
	if err != nil {
		return scale.Unbounded, err
	}
	return c.MaxEncodedLen(), nil
}

// Validate compiles every named type, reporting the first dangling
// reference.
func (reg *Registry) Validate() error {
	for _, name := range reg.Names() {
		if _, err := reg.Codec(name); err != nil {
			return fmt.Errorf("schema: type %s: %w", name, err)
		}
	}
	return nil
}

func validate(name string, def Def) error {
	set := 0
	for _, present := range []bool{def.Struct != nil, def.Enum != nil, def.Alias != ""} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("schema: type %s must be exactly one of struct, enum or alias", name)
	}
	if _, isBuiltin := primitives[name]; isBuiltin {
		return fmt.Errorf("schema: type %s shadows a built-in type", name)
	}
	if def.Alias != "" {
		_, err := Parse(def.Alias)
		return err
	}
	if err := validateFields(name, def.Struct); err != nil {
		return err
	}
	if def.Enum == nil {
		return nil
	}
	if len(def.Enum) > 256 {
		return fmt.Errorf("schema: enum %s has %d variants, at most 256 fit a discriminant byte", name, len(def.Enum))
	}
	seenIndex := make(map[int]string)
	seenName := make(map[string]bool)
	for i, v := range def.Enum {
		idx := i
		if v.Index != nil {
			idx = *v.Index
		}
		if idx < 0 || idx > 255 {
			return fmt.Errorf("schema: enum %s variant %s: index %d out of range", name, v.Name, idx)
		}
		if prev, dup := seenIndex[idx]; dup {
			return fmt.Errorf("schema: enum %s: variants %s and %s share index %d", name, prev, v.Name, idx)
		}
		if seenName[v.Name] || v.Name == "" {
			return fmt.Errorf("schema: enum %s: variant name %q is empty or repeated", name, v.Name)
		}
		seenIndex[idx], seenName[v.Name] = v.Name, true
		if v.Type != "" && v.Fields != nil {
			return fmt.Errorf("schema: enum %s variant %s: type and fields are exclusive", name, v.Name)
		}
		if v.Type != "" {
			if _, err := Parse(v.Type); err != nil {
				return err
			}
		}
		if err := validateFields(name+"::"+v.Name, v.Fields); err != nil {
			return err
		}
	}
	return nil
}

func validateFields(owner string, fields []FieldDef) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("schema: %s: field name %q is empty or repeated", owner, f.Name)
		}
		seen[f.Name] = true
		if _, err := Parse(f.Type); err != nil {
			return err
		}
	}
	return nil
}
