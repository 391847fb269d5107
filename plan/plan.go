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

// Package plan lowers a lang.Transaction into an ExecutionPlan: an
// ordered list of primitive Operations the engine package executes.
package plan

import (
	"fmt"

	"github.com/eventdb/eventdb/lang"
)

// ExecutionPlan is an ordered list of Operations. The engine runs them
// strictly in order, stopping at the first failure.
type ExecutionPlan struct {
	Operations []Operation
}

// Operation is the sum type of primitive engine actions.
type Operation interface {
	operationNode()
}

type CheckStreamExists struct {
	Stream lang.StreamName
}

type CheckEventExists struct {
	Stream lang.StreamName
	Event  lang.EventName
}

type CheckAttributeExists struct {
	Stream    lang.StreamName
	Event     lang.EventName
	Attribute lang.AttributeName
}

type CreateStream struct {
	Stream lang.StreamName
}

type CreateEvent struct {
	Stream lang.StreamName
	Event  lang.EventName
}

type CreateAttribute struct {
	Stream    lang.StreamName
	Event     lang.EventName
	Attribute lang.AttributeName
	Type      lang.TypeTag
}

// AttrValue is one resolved `name=value` pair destined for AppendEvent.
type AttrValue struct {
	Name  lang.AttributeName
	Value lang.Value
}

type AppendEvent struct {
	Stream     lang.StreamName
	Key        string
	Event      lang.EventName
	AttrValues []AttrValue
}

type ShowSchema struct{}

// Query wraps a find command as a single opaque operation. Execution
// of find is a declared non-goal; the engine rejects it as
// unsupported.
type Query struct {
	AST lang.FindCommand
}

func (CheckStreamExists) operationNode()    {}
func (CheckEventExists) operationNode()     {}
func (CheckAttributeExists) operationNode() {}
func (CreateStream) operationNode()         {}
func (CreateEvent) operationNode()          {}
func (CreateAttribute) operationNode()      {}
func (AppendEvent) operationNode()          {}
func (ShowSchema) operationNode()           {}
func (Query) operationNode()                {}

// PlanError is raised when a Command cannot be lowered, e.g. a type
// mismatch between a declared attribute and the literal supplied for
// it in an `add`.
type PlanError struct {
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan error: %s", e.Message)
}

// CatalogReader is the read-only slice of the engine's schema catalog
// that the planner needs to check type coherence on `add` literals
// ahead of execution. A nil CatalogReader skips the check, deferring
// to the engine's CheckAttributeExists operations at execution time.
type CatalogReader interface {
	AttributeType(stream lang.StreamName, event lang.EventName, attr lang.AttributeName) (lang.TypeTag, bool)
}

// Plan lowers every command in tx into a single ExecutionPlan. catalog
// may be nil; when present it is consulted to reject type-incoherent
// `add` literals before the plan reaches the engine.
func Plan(tx *lang.Transaction, catalog CatalogReader) (*ExecutionPlan, error) {

	var ops []Operation

	for _, cmd := range tx.Commands {
		cmdOps, err := planCommand(cmd, catalog)
		if err != nil {
			return nil, err
		}
		ops = append(ops, cmdOps...)
	}

	return &ExecutionPlan{Operations: ops}, nil

}

func planCommand(cmd lang.Command, catalog CatalogReader) ([]Operation, error) {
	switch c := cmd.(type) {
	case lang.ShowCommand:
		return planShow(c)
	case lang.CreateCommand:
		return planCreate(c)
	case lang.AddCommand:
		return planAdd(c, catalog)
	case lang.FindCommand:
		return []Operation{Query{AST: c}}, nil
	default:
		return nil, &PlanError{Message: "unplannable command shape"}
	}
}

func planShow(c lang.ShowCommand) ([]Operation, error) {
	switch c.Entity.(type) {
	case lang.SchemaEntity:
		return []Operation{ShowSchema{}}, nil
	default:
		return nil, &PlanError{Message: "show only supports schema"}
	}
}

func planCreate(c lang.CreateCommand) ([]Operation, error) {
	switch e := c.Entity.(type) {
	case lang.StreamEntity:
		return []Operation{CreateStream{Stream: e.Name}}, nil
	case lang.EventEntity:
		ops := []Operation{
			CheckStreamExists{Stream: e.Stream},
			CreateEvent{Stream: e.Stream, Event: e.Name},
		}
		for _, a := range e.Attrs {
			ops = append(ops, CreateAttribute{
				Stream:    e.Stream,
				Event:     e.Name,
				Attribute: a.Name,
				Type:      a.Type,
			})
		}
		return ops, nil
	default:
		return nil, &PlanError{Message: "create only supports stream or event"}
	}
}

func planAdd(c lang.AddCommand, catalog CatalogReader) ([]Operation, error) {

	ops := []Operation{
		CheckStreamExists{Stream: c.Stream},
		CheckEventExists{Stream: c.Stream, Event: c.Event},
	}

	attrValues := make([]AttrValue, 0, len(c.Attrs))

	for _, a := range c.Attrs {
		ops = append(ops, CheckAttributeExists{
			Stream:    c.Stream,
			Event:     c.Event,
			Attribute: a.Name,
		})

		if catalog != nil {
			if declared, ok := catalog.AttributeType(c.Stream, c.Event, a.Name); ok {
				if !Coherent(declared, a.Value) {
					return nil, &PlanError{Message: fmt.Sprintf(
						"attribute %q declared %s cannot hold a %s value",
						a.Name, declared, a.Value.Kind)}
				}
			}
		}

		attrValues = append(attrValues, AttrValue{Name: a.Name, Value: a.Value})
	}

	ops = append(ops, AppendEvent{
		Stream:     c.Stream,
		Key:        c.StreamKey,
		Event:      c.Event,
		AttrValues: attrValues,
	})

	return ops, nil

}

// Coherent reports whether a literal Value may be stored into an
// attribute declared with the given TypeTag. Int promotes to Float;
// every other pairing requires an exact match.
func Coherent(declared lang.TypeTag, v lang.Value) bool {
	if declared == v.Kind {
		return true
	}
	if declared == lang.TypeFloat && v.Kind == lang.TypeInt {
		return true
	}
	return false
}
