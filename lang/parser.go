// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lang

import (
	"strings"
)

// Parser is a recursive-descent parser with one token of lookahead,
// provided by the underlying Lexer's Peek.
type Parser struct {
	lex *Lexer
}

// NewParser wraps lex for parsing.
func NewParser(lex *Lexer) *Parser {
	return &Parser{lex: lex}
}

// Parse parses a string containing one or more `;`-terminated
// commands into a Transaction.
func Parse(input string) (*Transaction, error) {
	p := NewParser(NewLexer(strings.NewReader(input)))
	return p.Parse()
}

// Parse consumes commands until end of input.
func (p *Parser) Parse() (*Transaction, error) {

	var commands []Command

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF {
			break
		}

		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}

		commands = append(commands, cmd)
	}

	return &Transaction{Commands: commands}, nil

}

func (p *Parser) next() (Token, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return tok, err
	}
	return tok, nil
}

func (p *Parser) peek() (Token, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return tok, err
	}
	return tok, nil
}

func (p *Parser) expectKind(k Kind, what string) (Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Kind != k {
		return tok, &ParseError{Message: "expected " + what, Found: tok}
	}
	return tok, nil
}

func (p *Parser) expectIdent(what string) (string, error) {
	tok, err := p.expectKind(IDENT, what)
	if err != nil {
		return "", err
	}
	return tok.Str, nil
}

// expectEnd requires the `;` terminator. A missing terminator is a
// ParseError, never a bare EOF: spec.md treats End as the sentinel
// that defines a valid command boundary.
func (p *Parser) expectEnd() error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.Kind != END {
		if tok.Kind == EOF {
			return &ParseError{Message: "missing ';' terminator", Found: tok}
		}
		return &ParseError{Message: "expected ';'", Found: tok}
	}
	return nil
}

func (p *Parser) parseCommand() (Command, error) {

	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	if tok.Kind != KEYWORD {
		return nil, &ParseError{Message: "expected a command keyword", Found: tok}
	}

	switch tok.Keyword {
	case Show:
		return p.parseShow()
	case Create:
		return p.parseCreate()
	case Add:
		return p.parseAdd()
	case Find:
		return p.parseFind()
	default:
		return nil, &ParseError{Message: "unexpected keyword to start a command", Found: tok}
	}

}

func (p *Parser) parseShow() (Command, error) {

	name, err := p.expectIdent("entity name")
	if err != nil {
		return nil, err
	}

	if strings.ToLower(name) != "schema" {
		return nil, &ParseError{Message: "unsupported entity '" + name + "'"}
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return ShowCommand{Entity: SchemaEntity{}}, nil

}

func (p *Parser) parseCreate() (Command, error) {

	kind, err := p.expectIdent("'stream' or 'event'")
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(kind) {
	case "stream":
		return p.parseCreateStream()
	case "event":
		return p.parseCreateEvent()
	default:
		return nil, &ParseError{Message: "unsupported entity '" + kind + "'"}
	}

}

func (p *Parser) parseCreateStream() (Command, error) {

	name, err := p.expectIdent("stream name")
	if err != nil {
		return nil, err
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return CreateCommand{Entity: StreamEntity{Name: StreamName(name)}}, nil

}

func (p *Parser) parseCreateEvent() (Command, error) {

	eventName, err := p.expectIdent("event name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKind(GRPSTART, "'('"); err != nil {
		return nil, err
	}

	attrs, err := p.parseAttrDefs()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKind(GRPEND, "')'"); err != nil {
		return nil, err
	}

	if _, err := p.expectKind(AUXON, "'on'"); err != nil {
		return nil, err
	}

	streamName, err := p.expectIdent("stream name")
	if err != nil {
		return nil, err
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return CreateCommand{Entity: EventEntity{
		Name:   EventName(eventName),
		Stream: StreamName(streamName),
		Attrs:  attrs,
	}}, nil

}

func (p *Parser) parseAttrDefs() ([]AttrDef, error) {

	var attrs []AttrDef

	for {
		name, err := p.expectIdent("attribute name")
		if err != nil {
			return nil, err
		}

		typeName, err := p.expectIdent("attribute type")
		if err != nil {
			return nil, err
		}

		tag, ok := ParseTypeTag(strings.ToLower(typeName))
		if !ok {
			return nil, &ParseError{Message: "unknown attribute type '" + typeName + "'"}
		}

		attrs = append(attrs, AttrDef{Name: AttributeName(name), Type: tag})

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != SEPARATOR {
			break
		}
		p.next()
	}

	return attrs, nil

}

func (p *Parser) parseAdd() (Command, error) {

	eventName, err := p.expectIdent("event name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKind(GRPSTART, "'('"); err != nil {
		return nil, err
	}

	attrs, err := p.parseAttrValues()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKind(GRPEND, "')'"); err != nil {
		return nil, err
	}

	if _, err := p.expectKind(AUXTO, "'to'"); err != nil {
		return nil, err
	}

	streamName, err := p.expectIdent("stream name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKind(GRPSTART, "'('"); err != nil {
		return nil, err
	}

	idName, err := p.expectIdent("'id'")
	if err != nil {
		return nil, err
	}
	if strings.ToLower(idName) != "id" {
		return nil, &ParseError{Message: "expected 'id' key"}
	}

	if _, err := p.expectKind(ASSIGN, "'='"); err != nil {
		return nil, err
	}

	keyTok, err := p.expectKind(STRING, "stream key string")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKind(GRPEND, "')'"); err != nil {
		return nil, err
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return AddCommand{
		Event:     EventName(eventName),
		Attrs:     attrs,
		Stream:    StreamName(streamName),
		StreamKey: keyTok.Str,
	}, nil

}

func (p *Parser) parseAttrValues() ([]AttrValue, error) {

	var attrs []AttrValue

	for {
		name, err := p.expectIdent("attribute name")
		if err != nil {
			return nil, err
		}

		if _, err := p.expectKind(ASSIGN, "'='"); err != nil {
			return nil, err
		}

		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}

		attrs = append(attrs, AttrValue{Name: AttributeName(name), Value: val})

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != SEPARATOR {
			break
		}
		p.next()
	}

	return attrs, nil

}

func (p *Parser) parseLiteral() (Value, error) {

	tok, err := p.next()
	if err != nil {
		return Value{}, err
	}

	switch tok.Kind {
	case STRING:
		return StringValue(tok.Str), nil
	case INT:
		return IntValue(tok.Int), nil
	case FLOAT:
		return FloatValue(tok.Float), nil
	case BOOL:
		return BoolValue(tok.Bool), nil
	case OPERATOR:
		if tok.Operator == OpSub {
			inner, err := p.parseLiteral()
			if err != nil {
				return Value{}, err
			}
			switch inner.Kind {
			case TypeInt:
				return IntValue(-inner.Int), nil
			case TypeFloat:
				return FloatValue(-inner.Float), nil
			}
			return Value{}, &ParseError{Message: "'-' only applies to numeric literals", Found: tok}
		}
	}

	return Value{}, &ParseError{Message: "expected a literal value", Found: tok}

}

func (p *Parser) parseFind() (Command, error) {

	projections, err := p.parseProjections()
	if err != nil {
		return nil, err
	}

	var predicates []Predicate
	var limit *int64

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind == KEYWORD && tok.Keyword == Where {
		p.next()
		predicates, err = p.parsePredicates()
		if err != nil {
			return nil, err
		}
		tok, err = p.peek()
		if err != nil {
			return nil, err
		}
	}

	if tok.Kind == KEYWORD && tok.Keyword == Limit {
		p.next()
		n, err := p.expectKind(INT, "limit value")
		if err != nil {
			return nil, err
		}
		limit = &n.Int
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return FindCommand{Projections: projections, Predicates: predicates, Limit: limit}, nil

}

func (p *Parser) parseProjections() ([]Projection, error) {

	var projections []Projection

	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		projections = append(projections, Projection{Expr: expr})

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != SEPARATOR {
			break
		}
		p.next()
	}

	return projections, nil

}

func (p *Parser) parsePredicates() ([]Predicate, error) {

	var predicates []Predicate

	for {
		left, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		opTok, err := p.expectKind(OPERATOR, "comparison operator")
		if err != nil {
			return nil, err
		}

		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		predicates = append(predicates, Predicate{
			Left:  left,
			Op:    mapBinOp(opTok.Operator),
			Right: right,
		})

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != SEPARATOR {
			break
		}
		p.next()
	}

	return predicates, nil

}

// parseExpression parses `stream.attribute`, `fn(expr)`, a literal, or
// a binary operation. Per spec.md §4.2 this revision has no
// precedence table and is right-associative.
func (p *Parser) parseExpression() (Expression, error) {

	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind == OPERATOR {
		p.next()
		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return BinaryExpr{Left: left, Op: mapBinOp(tok.Operator), Right: right}, nil
	}

	return left, nil

}

func (p *Parser) parsePrimary() (Expression, error) {

	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case IDENT:
		if _, err := p.expectKind(ACCESSOR, "'.'"); err != nil {
			return nil, err
		}
		attr, err := p.expectIdent("attribute name")
		if err != nil {
			return nil, err
		}
		return AttributeExpr{Stream: StreamName(tok.Str), Attribute: AttributeName(attr)}, nil

	case FUNCTION:
		if _, err := p.expectKind(GRPSTART, "'('"); err != nil {
			return nil, err
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKind(GRPEND, "')'"); err != nil {
			return nil, err
		}
		return AggregateExpr{Fn: mapAggFn(tok.Function), Arg: arg}, nil

	case STRING:
		return LiteralExpr{Value: StringValue(tok.Str)}, nil
	case INT:
		return LiteralExpr{Value: IntValue(tok.Int)}, nil
	case FLOAT:
		return LiteralExpr{Value: FloatValue(tok.Float)}, nil
	case BOOL:
		return LiteralExpr{Value: BoolValue(tok.Bool)}, nil

	case OPERATOR:
		if tok.Operator == OpSub {
			operand, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return UnaryExpr{Op: UnNegate, Operand: operand}, nil
		}
	}

	return nil, &ParseError{Message: "expected an expression", Found: tok}

}

func mapBinOp(op Operator) BinOp {
	switch op {
	case OpAdd:
		return BinAdd
	case OpSub:
		return BinSub
	case OpMul:
		return BinMul
	case OpDiv:
		return BinDiv
	case OpMod:
		return BinMod
	case OpEq:
		return BinEq
	case OpNeq:
		return BinNeq
	case OpLt:
		return BinLt
	case OpLte:
		return BinLte
	case OpGt:
		return BinGt
	case OpGte:
		return BinGte
	}
	return BinEq
}

func mapAggFn(f Function) AggFn {
	switch f {
	case Sum:
		return AggSum
	case Min:
		return AggMin
	case Max:
		return AggMax
	case Avg:
		return AggAvg
	case Count:
		return AggCount
	}
	return AggSum
}
