package schema

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// ErrSyntax is returned for malformed type expressions.
var ErrSyntax = errors.New("schema: syntax error")

var primitives = map[string]Kind{
	"bool":   KindBool,
	"u8":     KindU8,
	"u16":    KindU16,
	"u32":    KindU32,
	"u64":    KindU64,
	"u128":   KindU128,
	"i8":     KindI8,
	"i16":    KindI16,
	"i32":    KindI32,
	"i64":    KindI64,
	"i128":   KindI128,
	"str":    KindStr,
	"String": KindStr,
	"bytes":  KindBytes,
	"BitVec": KindBitVec,
}

// Parse parses a type expression such as "Vec<(u32, Option<str>)>" or
// "[u8; 32]". Identifiers that are not built in are named types, resolved
// later against a Registry.
func Parse(expr string) (*Type, error) {
	p := &parser{src: []rune(expr)}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q after type", string(p.src[p.pos:]))
	}
	return t, nil
}

// MustParse is Parse for expressions known to be valid.
func MustParse(expr string) *Type {
	t, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d in %q: %s", ErrSyntax, p.pos, string(p.src), fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() rune {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(r rune) error {
	if p.peek() != r {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q, got end of input", r)
		}
		return p.errorf("expected %q, got %q", r, p.src[p.pos])
	}
	p.pos++
	return nil
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if r == '_' || unicode.IsLetter(r) || (p.pos > start && (unicode.IsDigit(r) || r == ':')) {
			p.pos++
			continue
		}
		break
	}
	return string(p.src[start:p.pos])
}

func (p *parser) number() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && unicode.IsDigit(p.src[p.pos]) {
		p.pos++
	}
	n, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return 0, p.errorf("bad array length %q", string(p.src[start:p.pos]))
	}
	return n, nil
}

func (p *parser) parseType() (*Type, error) {
	switch p.peek() {
	case '[':
		p.pos++
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(';'); err != nil {
			return nil, err
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindArray, Elem: elem, Len: n}, nil
	case '(':
		p.pos++
		members, err := p.list(')')
		if err != nil {
			return nil, err
		}
		if len(members) == 1 {
			return members[0], nil
		}
		return &Type{Kind: KindTuple, Members: members}, nil
	case 0:
		return nil, p.errorf("expected a type, got end of input")
	}

	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected a type, got %q", p.src[p.pos])
	}
	if k, ok := primitives[name]; ok {
		return &Type{Kind: k}, nil
	}

	var params []*Type
	if p.peek() == '<' {
		p.pos++
		var err error
		if params, err = p.list('>'); err != nil {
			return nil, err
		}
	}
	arity := func(n int) error {
		if len(params) != n {
			return p.errorf("%s takes %d type parameters, got %d", name, n, len(params))
		}
		return nil
	}

	switch name {
	case "Vec":
		if err := arity(1); err != nil {
			return nil, err
		}
		return &Type{Kind: KindVec, Elem: params[0]}, nil
	case "Option":
		if err := arity(1); err != nil {
			return nil, err
		}
		return &Type{Kind: KindOption, Elem: params[0]}, nil
	case "Box":
		if err := arity(1); err != nil {
			return nil, err
		}
		return params[0], nil
	case "Compact":
		if err := arity(1); err != nil {
			return nil, err
		}
		if !params[0].Kind.IsUnsigned() {
			return nil, p.errorf("Compact needs an unsigned integer, got %s", params[0])
		}
		return &Type{Kind: KindCompact, Elem: params[0]}, nil
	case "Result":
		if err := arity(2); err != nil {
			return nil, err
		}
		return &Type{Kind: KindResult, Elem: params[0], Err: params[1]}, nil
	}
	if params != nil {
		return nil, p.errorf("named type %s takes no type parameters", name)
	}
	return &Type{Kind: KindNamed, Name: name}, nil
}

// list parses comma separated types up to and including the closing rune.
func (p *parser) list(closing rune) ([]*Type, error) {
	var out []*Type
	if p.peek() == closing {
		p.pos++
		return out, nil
	}
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		switch p.peek() {
		case ',':
			p.pos++
			if p.peek() == closing {
				p.pos++
				return out, nil
			}
		case closing:
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or %q", closing)
		}
	}
}
