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

// Package lang implements the command language: the lexer that turns
// raw bytes into Tokens and the recursive-descent parser that turns a
// Token stream into a Transaction.
package lang

import "fmt"

// StreamName, EventName and AttributeName are distinct name types so
// that a stream name can never be passed where an event name is
// expected, even though both are plain strings underneath.
type StreamName string
type EventName string
type AttributeName string

// TypeTag is the schema-declared type of an attribute.
type TypeTag int

const (
	TypeString TypeTag = iota
	TypeInt
	TypeFloat
	TypeBool
)

func (t TypeTag) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	}
	return "unknown"
}

// ParseTypeTag maps the identifier used in an attribute definition
// (e.g. "string" in `owner string`) onto a TypeTag.
func ParseTypeTag(s string) (TypeTag, bool) {
	switch s {
	case "string":
		return TypeString, true
	case "int":
		return TypeInt, true
	case "float":
		return TypeFloat, true
	case "bool":
		return TypeBool, true
	}
	return TypeString, false
}

// Value is a runtime literal value, tagged by its TypeTag.
type Value struct {
	Kind  TypeTag
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func StringValue(s string) Value { return Value{Kind: TypeString, Str: s} }
func IntValue(i int64) Value     { return Value{Kind: TypeInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: TypeFloat, Float: f} }
func BoolValue(b bool) Value     { return Value{Kind: TypeBool, Bool: b} }

func (v Value) String() string {
	switch v.Kind {
	case TypeString:
		return fmt.Sprintf("%q", v.Str)
	case TypeInt:
		return fmt.Sprintf("%d", v.Int)
	case TypeFloat:
		return fmt.Sprintf("%v", v.Float)
	case TypeBool:
		return fmt.Sprintf("%v", v.Bool)
	}
	return "?"
}

// Transaction is the parser's top-level output: an ordered list of
// commands, one per `;`-terminated statement in the input.
type Transaction struct {
	Commands []Command
}

// Command is the sum type of the four supported statements.
type Command interface {
	commandNode()
}

// ShowCommand renders `show <entity>;`. At this revision Entity is
// always SchemaEntity.
type ShowCommand struct {
	Entity Entity
}

// CreateCommand renders `create <entity>;`.
type CreateCommand struct {
	Entity Entity
}

// AttrValue is a single `name=literal` pair in an `add` command.
type AttrValue struct {
	Name  AttributeName
	Value Value
}

// AddCommand renders `add Event(attrs) to stream(id=key);`.
type AddCommand struct {
	Event     EventName
	Attrs     []AttrValue
	Stream    StreamName
	StreamKey string
}

// FindCommand renders `find proj, ... [where pred, ...] [limit n];`.
// Execution of Find is a declared non-goal; the planner forwards this
// AST node unchanged and the engine rejects it.
type FindCommand struct {
	Projections []Projection
	Predicates  []Predicate
	Limit       *int64
}

func (ShowCommand) commandNode()   {}
func (CreateCommand) commandNode() {}
func (AddCommand) commandNode()    {}
func (FindCommand) commandNode()   {}

// Entity is the sum type of things a `show`/`create` command can name.
type Entity interface {
	entityNode()
}

// SchemaEntity is the target of `show schema;`.
type SchemaEntity struct{}

// StreamEntity is the target of `create stream NAME;`.
type StreamEntity struct {
	Name StreamName
}

// AttrDef is one `name type` pair in an event declaration.
type AttrDef struct {
	Name AttributeName
	Type TypeTag
}

// EventEntity is the target of `create event NAME(attrs) on STREAM;`.
type EventEntity struct {
	Name   EventName
	Stream StreamName
	Attrs  []AttrDef
}

func (SchemaEntity) entityNode() {}
func (StreamEntity) entityNode() {}
func (EventEntity) entityNode()  {}

// AggFn enumerates the aggregate functions usable in Find projections.
type AggFn int

const (
	AggSum AggFn = iota
	AggMin
	AggMax
	AggAvg
	AggCount
)

// BinOp enumerates the binary operators usable in expressions.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNeq
	BinLt
	BinLte
	BinGt
	BinGte
)

// Projection is one entry in a find command's projection list.
type Projection struct {
	Alias string
	Expr  Expression
}

// Predicate is one entry in a find command's where clause.
type Predicate struct {
	Left  Expression
	Op    BinOp
	Right Expression
}

// Expression is the sum type of the algebraic expression tree used in
// find projections and predicates.
type Expression interface {
	exprNode()
}

// LiteralExpr wraps a literal Value.
type LiteralExpr struct {
	Value Value
}

// AttributeExpr references `stream.attribute`.
type AttributeExpr struct {
	Stream    StreamName
	Attribute AttributeName
}

// AggregateExpr applies an aggregate function to a sub-expression.
type AggregateExpr struct {
	Fn  AggFn
	Arg Expression
}

// BinaryExpr is a two-operand expression, e.g. `a + b`.
type BinaryExpr struct {
	Left  Expression
	Op    BinOp
	Right Expression
}

// UnOp enumerates unary operators. Negate is the only one the grammar
// produces today (a leading `-` in front of an expression).
type UnOp int

const (
	UnNegate UnOp = iota
)

// UnaryExpr is a single-operand expression, e.g. `-a`.
type UnaryExpr struct {
	Op      UnOp
	Operand Expression
}

func (LiteralExpr) exprNode()   {}
func (AttributeExpr) exprNode() {}
func (AggregateExpr) exprNode() {}
func (BinaryExpr) exprNode()    {}
func (UnaryExpr) exprNode()     {}
