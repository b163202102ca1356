// Package p4info reads the protobuf text format emitted alongside a compiled
// program. Only action signatures (preamble name + ordered params with
// bitwidths) are consumed; the loader uses them to cross-check the
// compiled-program description. Everything else in the file is skipped
// structurally, so unknown message fields never break the load.
package p4info

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Param is one runtime parameter of an action signature.
type Param struct {
	ID       int
	Name     string
	Bitwidth int
}

// Action is one action signature.
type Action struct {
	Name   string
	Alias  string
	Params []Param
}

// Info holds the parsed signature description.
type Info struct {
	Actions map[string]*Action
	Order   []string
}

// Action returns the named action signature, trying the full name first and
// the short alias second.
func (i *Info) Action(name string) (*Action, bool) {
	if a, ok := i.Actions[name]; ok {
		return a, true
	}
	for _, n := range i.Order {
		if i.Actions[n].Alias == name {
			return i.Actions[n], true
		}
	}
	return nil, false
}

// Parse parses P4Info text format.
func Parse(input string) (*Info, error) {
	s := &scanner{input: input}
	info := &Info{Actions: make(map[string]*Action)}
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		if tok == "" {
			return info, nil
		}
		switch {
		case tok == "actions":
			if err := s.expect("{"); err != nil {
				return nil, err
			}
			a, err := parseAction(s)
			if err != nil {
				return nil, err
			}
			if a.Name == "" {
				return nil, fmt.Errorf("actions block without a preamble name")
			}
			if _, dup := info.Actions[a.Name]; dup {
				return nil, fmt.Errorf("duplicate action %q", a.Name)
			}
			info.Actions[a.Name] = a
			info.Order = append(info.Order, a.Name)
		default:
			if err := skipValue(s, tok); err != nil {
				return nil, err
			}
		}
	}
}

func parseAction(s *scanner) (*Action, error) {
	a := &Action{}
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		switch tok {
		case "}":
			return a, nil
		case "":
			return nil, fmt.Errorf("unterminated actions block")
		case "preamble":
			if err := s.expect("{"); err != nil {
				return nil, err
			}
			if err := parsePreamble(s, a); err != nil {
				return nil, err
			}
		case "params":
			if err := s.expect("{"); err != nil {
				return nil, err
			}
			p, err := parseParam(s)
			if err != nil {
				return nil, err
			}
			a.Params = append(a.Params, p)
		default:
			if err := skipValue(s, tok); err != nil {
				return nil, err
			}
		}
	}
}

func parsePreamble(s *scanner, a *Action) error {
	for {
		tok, err := s.next()
		if err != nil {
			return err
		}
		switch tok {
		case "}":
			return nil
		case "":
			return fmt.Errorf("unterminated preamble block")
		case "name":
			v, err := s.scalar()
			if err != nil {
				return err
			}
			a.Name = v
		case "alias":
			v, err := s.scalar()
			if err != nil {
				return err
			}
			a.Alias = v
		default:
			if err := skipValue(s, tok); err != nil {
				return err
			}
		}
	}
}

func parseParam(s *scanner) (Param, error) {
	var p Param
	for {
		tok, err := s.next()
		if err != nil {
			return p, err
		}
		switch tok {
		case "}":
			return p, nil
		case "":
			return p, fmt.Errorf("unterminated params block")
		case "id":
			v, err := s.scalar()
			if err != nil {
				return p, err
			}
			p.ID, _ = strconv.Atoi(v)
		case "name":
			v, err := s.scalar()
			if err != nil {
				return p, err
			}
			p.Name = v
		case "bitwidth":
			v, err := s.scalar()
			if err != nil {
				return p, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return p, fmt.Errorf("param bitwidth %q is not an integer", v)
			}
			p.Bitwidth = n
		default:
			if err := skipValue(s, tok); err != nil {
				return p, err
			}
		}
	}
}

// skipValue consumes whatever follows an unrecognized field name: either a
// ": scalar" or a nested "{ ... }" block.
func skipValue(s *scanner, field string) error {
	tok, err := s.next()
	if err != nil {
		return err
	}
	switch tok {
	case ":":
		_, err := s.next()
		return err
	case "{":
		depth := 1
		for depth > 0 {
			t, err := s.next()
			if err != nil {
				return err
			}
			if t == "" {
				return fmt.Errorf("unterminated block after %q", field)
			}
			switch t {
			case "{":
				depth++
			case "}":
				depth--
			}
		}
		return nil
	default:
		return fmt.Errorf("expected ':' or '{' after %q, got %q", field, tok)
	}
}

// scanner is a minimal textproto tokenizer: identifiers, numbers, quoted
// strings (unquoted on return), and the punctuation ":" "{" "}".
type scanner struct {
	input string
	pos   int
}

// scalar consumes a ":" and returns the following token.
func (s *scanner) scalar() (string, error) {
	if err := s.expect(":"); err != nil {
		return "", err
	}
	tok, err := s.next()
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", fmt.Errorf("expected scalar value, got end of input")
	}
	return tok, nil
}

func (s *scanner) expect(want string) error {
	tok, err := s.next()
	if err != nil {
		return err
	}
	if tok != want {
		return fmt.Errorf("expected %q, got %q", want, tok)
	}
	return nil
}

func (s *scanner) next() (string, error) {
	s.skipSpaceAndComments()
	if s.pos >= len(s.input) {
		return "", nil
	}
	c := s.input[s.pos]
	switch c {
	case ':', '{', '}':
		s.pos++
		return string(c), nil
	case '"':
		return s.quoted()
	}
	start := s.pos
	for s.pos < len(s.input) {
		r := rune(s.input[s.pos])
		if unicode.IsSpace(r) || r == ':' || r == '{' || r == '}' || r == '#' {
			break
		}
		s.pos++
	}
	if s.pos == start {
		return "", fmt.Errorf("unexpected character %q at offset %d", c, s.pos)
	}
	return s.input[start:s.pos], nil
}

func (s *scanner) quoted() (string, error) {
	start := s.pos
	s.pos++
	var sb strings.Builder
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		if c == '\\' && s.pos+1 < len(s.input) {
			sb.WriteByte(s.input[s.pos+1])
			s.pos += 2
			continue
		}
		if c == '"' {
			s.pos++
			return sb.String(), nil
		}
		sb.WriteByte(c)
		s.pos++
	}
	return "", fmt.Errorf("unterminated string at offset %d", start)
}

func (s *scanner) skipSpaceAndComments() {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.pos++
		case c == '#':
			for s.pos < len(s.input) && s.input[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}
