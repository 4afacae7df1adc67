package mapfile

import (
	"fmt"

	"goquakemap/vec"
)

// ParseEntities tokenizes and parses a complete MAP file buffer into its
// entity blocks. The outer loop is a brace-depth state machine: each
// top-level "{" opens an entity, attribute lines are quoted key/value
// pairs, and a nested "{" opens a brush whose body is plane-equation
// face lines until the matching "}".
func ParseEntities(data []byte) ([]*ParsedEntity, error) {
	l := newLexer(data)
	var entities []*ParsedEntity
	for {
		t := l.next()
		if t.kind == tokEOF {
			break
		}
		if t.kind != tokBrace || t.text != "{" {
			return nil, fmt.Errorf("mapfile: line %d: expected entity '{', got %q", t.line, t.text)
		}
		e, err := parseEntity(l)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func parseEntity(l *lexer) (*ParsedEntity, error) {
	e := &ParsedEntity{Attributes: map[string]string{}}
	for {
		t := l.next()
		switch {
		case t.kind == tokBrace && t.text == "}":
			return e, nil
		case t.kind == tokBrace && t.text == "{":
			b, err := parseBrush(l)
			if err != nil {
				return nil, err
			}
			e.Brushes = append(e.Brushes, *b)
		case t.kind == tokString:
			key := t.text
			v := l.next()
			if v.kind != tokString {
				return nil, fmt.Errorf("mapfile: line %d: expected value string for key %q", v.line, key)
			}
			e.Attributes[key] = v.text
		case t.kind == tokEOF:
			return nil, fmt.Errorf("mapfile: unexpected eof inside entity")
		default:
			return nil, fmt.Errorf("mapfile: line %d: unexpected token %q in entity", t.line, t.text)
		}
	}
}

func parseBrush(l *lexer) (*ParsedBrush, error) {
	b := &ParsedBrush{}
	for {
		t := l.next()
		if t.kind == tokBrace && t.text == "}" {
			return b, nil
		}
		if t.kind == tokEOF {
			return nil, fmt.Errorf("mapfile: unexpected eof inside brush")
		}
		if t.kind != tokParen || t.text != "(" {
			return nil, fmt.Errorf("mapfile: line %d: expected face '(', got %q", t.line, t.text)
		}
		face, err := parseFaceLine(l)
		if err != nil {
			return nil, err
		}
		b.Faces = append(b.Faces, *face)
	}
}

// parseFaceLine parses one brush plane line, with the opening '(' of the
// first point already consumed by the brush loop:
//
//	( p1 ) ( p2 ) ( p3 ) TEXTURE offU offV rot scaleU scaleV     -- Standard-100
//	( p1 ) ( p2 ) ( p3 ) TEXTURE [ ux uy uz uoff ] [ vx vy vz voff ] rot scaleU scaleV -- Valve-220
func parseFaceLine(l *lexer) (*ParsedFace, error) {
	p1, err := parsePointBody(l)
	if err != nil {
		return nil, err
	}
	if err := expectParen(l, "("); err != nil {
		return nil, err
	}
	p2, err := parsePointBody(l)
	if err != nil {
		return nil, err
	}
	if err := expectParen(l, "("); err != nil {
		return nil, err
	}
	p3, err := parsePointBody(l)
	if err != nil {
		return nil, err
	}

	tex := l.next()
	if tex.kind != tokWord && tex.kind != tokString {
		return nil, fmt.Errorf("mapfile: line %d: expected texture name, got %q", tex.line, tex.text)
	}

	f := &ParsedFace{P1: p1, P2: p2, P3: p3, TextureName: tex.text}

	peek := l.next()
	if peek.kind == tokBracket && peek.text == "[" {
		f.Valve = true
		u, uoff, err := parseAxisBody(l)
		if err != nil {
			return nil, err
		}
		if err := expectBracket(l, "["); err != nil {
			return nil, err
		}
		v, voff, err := parseAxisBody(l)
		if err != nil {
			return nil, err
		}
		f.UAxis, f.ValveOffsetU = u, uoff
		f.VAxis, f.ValveOffsetV = v, voff

		rot := l.next()
		rf, ok := parseFloat(rot.text)
		if !ok {
			return nil, fmt.Errorf("mapfile: line %d: bad rotation %q", rot.line, rot.text)
		}
		f.Rotation = rf
	} else {
		offU, ok := parseFloat(peek.text)
		if !ok {
			return nil, fmt.Errorf("mapfile: line %d: bad offset %q", peek.line, peek.text)
		}
		f.OffsetU = offU
		offV := l.next()
		if v, ok := parseFloat(offV.text); ok {
			f.OffsetV = v
		}
		rot := l.next()
		if v, ok := parseFloat(rot.text); ok {
			f.Rotation = v
		}
	}

	su := l.next()
	if v, ok := parseFloat(su.text); ok {
		f.ScaleU = v
	}
	sv := l.next()
	if v, ok := parseFloat(sv.text); ok {
		f.ScaleV = v
	}

	return f, nil
}

func parsePointBody(l *lexer) (vec.Vec3, error) {
	var out vec.Vec3
	for i := 0; i < 3; i++ {
		t := l.next()
		v, ok := parseFloat(t.text)
		if !ok {
			return out, fmt.Errorf("mapfile: line %d: expected number, got %q", t.line, t.text)
		}
		out[i] = v
	}
	if err := expectParen(l, ")"); err != nil {
		return out, err
	}
	return out, nil
}

// parseAxisBody parses "ux uy uz uoff" with the opening '[' already
// consumed, and also consumes the closing ']'.
func parseAxisBody(l *lexer) (vec.Vec3, float32, error) {
	var axis vec.Vec3
	for i := 0; i < 3; i++ {
		t := l.next()
		v, ok := parseFloat(t.text)
		if !ok {
			return axis, 0, fmt.Errorf("mapfile: line %d: expected axis component, got %q", t.line, t.text)
		}
		axis[i] = v
	}
	offTok := l.next()
	off, ok := parseFloat(offTok.text)
	if !ok {
		return axis, 0, fmt.Errorf("mapfile: line %d: expected axis offset, got %q", offTok.line, offTok.text)
	}
	if err := expectBracket(l, "]"); err != nil {
		return axis, 0, err
	}
	return axis, off, nil
}

func expectParen(l *lexer, want string) error {
	t := l.next()
	if t.kind != tokParen || t.text != want {
		return fmt.Errorf("mapfile: line %d: expected %q, got %q", t.line, want, t.text)
	}
	return nil
}

func expectBracket(l *lexer, want string) error {
	t := l.next()
	if t.kind != tokBracket || t.text != want {
		return fmt.Errorf("mapfile: line %d: expected %q, got %q", t.line, want, t.text)
	}
	return nil
}
