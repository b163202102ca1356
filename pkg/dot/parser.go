package dot

import (
	"fmt"
)

// Parse parses a single DOT digraph. Statements inside subgraph blocks are
// collected into the top-level graph.
func Parse(input string) (*Graph, error) {
	p := &parser{lex: newLexer(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	// Optional "strict", then "digraph" or "graph".
	if p.tok.typ == tokenIdent && p.tok.val == "strict" {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.typ != tokenIdent || (p.tok.val != "digraph" && p.tok.val != "graph") {
		return nil, fmt.Errorf("expected digraph keyword, got %q", p.tok.val)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	g := &Graph{Nodes: make(map[string]*Node)}
	if p.tok.typ == tokenIdent {
		g.Name = p.tok.val
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.tok.typ != tokenLBrace {
		return nil, fmt.Errorf("expected '{' after graph name")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.parseBody(g); err != nil {
		return nil, err
	}
	return g, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// parseBody parses statements until the matching '}'.
func (p *parser) parseBody(g *Graph) error {
	for {
		switch p.tok.typ {
		case tokenRBrace:
			return p.advance()
		case tokenEOF:
			return fmt.Errorf("unexpected end of input: missing '}'")
		case tokenSemi:
			if err := p.advance(); err != nil {
				return err
			}
		case tokenIdent:
			if err := p.parseStatement(g); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected token in graph body")
		}
	}
}

func (p *parser) parseStatement(g *Graph) error {
	name := p.tok.val

	// Nested subgraph: recurse into the same graph. p4c puts real nodes and
	// edges inside cluster subgraphs, so they must not be skipped.
	if name == "subgraph" {
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.typ == tokenIdent { // optional subgraph name
			if err := p.advance(); err != nil {
				return err
			}
		}
		if p.tok.typ != tokenLBrace {
			return fmt.Errorf("expected '{' after subgraph")
		}
		if err := p.advance(); err != nil {
			return err
		}
		return p.parseBody(g)
	}

	if err := p.advance(); err != nil {
		return err
	}

	// Graph-level attribute assignment: id '=' id. Discarded.
	if p.tok.typ == tokenEquals {
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.typ != tokenIdent {
			return fmt.Errorf("expected value after '='")
		}
		return p.advance()
	}

	// Edge chain: id ('->' id)+ attrlist?
	if p.tok.typ == tokenArrow {
		return p.parseEdgeChain(g, name)
	}

	// Default attribute statements apply to the pseudo-nodes "graph",
	// "node" and "edge"; parse the attr list and drop it.
	if name == "graph" || name == "node" || name == "edge" {
		if p.tok.typ == tokenLBracket {
			_, err := p.parseAttrList()
			return err
		}
		return nil
	}

	// Node statement: id attrlist?
	attrs := map[string]string{}
	if p.tok.typ == tokenLBracket {
		a, err := p.parseAttrList()
		if err != nil {
			return err
		}
		attrs = a
	}
	p.addNode(g, name, attrs)
	return nil
}

func (p *parser) parseEdgeChain(g *Graph, first string) error {
	chain := []string{first}
	for p.tok.typ == tokenArrow {
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.typ != tokenIdent {
			return fmt.Errorf("expected node id after '->'")
		}
		chain = append(chain, p.tok.val)
		if err := p.advance(); err != nil {
			return err
		}
	}

	label := ""
	if p.tok.typ == tokenLBracket {
		attrs, err := p.parseAttrList()
		if err != nil {
			return err
		}
		label = attrs["label"]
	}

	for i := 0; i+1 < len(chain); i++ {
		// Endpoints referenced only by edges still become nodes.
		p.addNode(g, chain[i], nil)
		p.addNode(g, chain[i+1], nil)
		g.Edges = append(g.Edges, &Edge{From: chain[i], To: chain[i+1], Label: label})
	}
	return nil
}

func (p *parser) parseAttrList() (map[string]string, error) {
	attrs := make(map[string]string)
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	for {
		switch p.tok.typ {
		case tokenRBracket:
			return attrs, p.advance()
		case tokenComma, tokenSemi:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokenIdent:
			key := p.tok.val
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.typ != tokenEquals {
				return nil, fmt.Errorf("expected '=' after attribute %q", key)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.typ != tokenIdent {
				return nil, fmt.Errorf("expected value for attribute %q", key)
			}
			attrs[key] = p.tok.val
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected token in attribute list")
		}
	}
}

// addNode registers a node, merging attributes into an existing record so a
// bare edge-endpoint mention never clobbers a full declaration.
func (p *parser) addNode(g *Graph, id string, attrs map[string]string) {
	n, ok := g.Nodes[id]
	if !ok {
		n = &Node{ID: id}
		g.Nodes[id] = n
		g.NodeOrder = append(g.NodeOrder, id)
	}
	if label, ok := attrs["label"]; ok {
		n.Label = label
	}
	if shape, ok := attrs["shape"]; ok {
		n.Shape = shape
	}
}
