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

// Package engine is the concurrent in-memory store: a schema catalog
// plus per-(stream,key) append-only event logs. It executes a
// plan.ExecutionPlan operation by operation, stopping at the first
// failure, and owns every invariant the rest of the pipeline depends
// on: schema validity, dense per-key versions, and safe concurrent
// access.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/eventdb/eventdb/lang"
	"github.com/eventdb/eventdb/log"
	"github.com/eventdb/eventdb/plan"
)

// Engine holds all catalog and log state for the process lifetime.
type Engine struct {
	catalog *catalog
	logs    *logStore
	clock   func() time.Time
}

// New returns an empty Engine. The real wall clock is used for event
// timestamps; tests may build an Engine directly with a fixed clock to
// assert exact timestamp behavior.
func New() *Engine {
	return &Engine{
		catalog: newCatalog(),
		logs:    newLogStore(),
		clock:   time.Now,
	}
}

// Catalog exposes the engine's schema as a plan.CatalogReader, so the
// planner can check `add` literal/type coherence ahead of execution.
func (e *Engine) Catalog() plan.CatalogReader {
	return e.catalog
}

// Exec runs every operation in p in order, stopping at the first
// failure. On success it returns a human-readable summary of the last
// operation performed, matching spec.md's "response is a summary of
// what was done" contract.
func (e *Engine) Exec(p *plan.ExecutionPlan) (string, error) {

	var summary string

	for _, op := range p.Operations {
		s, err := e.execOne(op)
		if err != nil {
			return "", err
		}
		if s != "" {
			summary = s
		}
	}

	return summary, nil

}

func (e *Engine) execOne(op plan.Operation) (string, error) {
	switch o := op.(type) {

	case plan.CheckStreamExists:
		if !e.catalog.hasStream(o.Stream) {
			return "", newErr(MissingStream, "stream %q does not exist", o.Stream)
		}
		return "", nil

	case plan.CheckEventExists:
		if !e.catalog.hasEvent(o.Stream, o.Event) {
			return "", newErr(MissingEvent, "event %q on stream %q does not exist", o.Event, o.Stream)
		}
		return "", nil

	case plan.CheckAttributeExists:
		if !e.catalog.hasAttribute(o.Stream, o.Event, o.Attribute) {
			return "", newErr(MissingAttribute, "attribute %q on %s.%s does not exist", o.Attribute, o.Stream, o.Event)
		}
		return "", nil

	case plan.CreateStream:
		e.catalog.createStream(o.Stream)
		log.Debugf("created stream %s", o.Stream)
		return fmt.Sprintf("created stream %s", o.Stream), nil

	case plan.CreateEvent:
		if err := e.catalog.createEvent(o.Stream, o.Event); err != nil {
			return "", err
		}
		log.Debugf("created event %s on %s", o.Event, o.Stream)
		return fmt.Sprintf("created event %s on %s", o.Event, o.Stream), nil

	case plan.CreateAttribute:
		if err := e.catalog.createAttribute(o.Stream, o.Event, o.Attribute, o.Type); err != nil {
			return "", err
		}
		return fmt.Sprintf("created attribute %s on %s.%s", o.Attribute, o.Stream, o.Event), nil

	case plan.AppendEvent:
		return e.appendEvent(o)

	case plan.ShowSchema:
		return e.catalog.render(), nil

	case plan.Query:
		return "", newErr(Unsupported, "find query execution is not implemented")

	default:
		return "", newErr(Unsupported, "unrecognized operation")
	}
}

func (e *Engine) appendEvent(o plan.AppendEvent) (string, error) {

	seq := e.logs.getOrCreate(o.Stream, o.Key)

	record := appendRecord(seq, o.Stream, o.Key, o.Event, o.AttrValues, e.clock)

	log.WithField("attrs", renderLine(o.AttrValues)).
		Debugf("appended %s v=%d to %s(id=%s)", o.Event, record.Version, o.Stream, o.Key)

	return fmt.Sprintf("added %s v=%d to %s(id=%s)", o.Event, record.Version, o.Stream, o.Key), nil

}

// Records returns a snapshot of the event log for (stream,key). The
// second return value is false if no event has ever been appended to
// that pair.
func (e *Engine) Records(stream lang.StreamName, key string) ([]EventRecord, bool) {
	seq, ok := e.logs.find(stream, key)
	if !ok {
		return nil, false
	}
	return seq.snapshot(), true
}

// renderLine joins a record's attributes for logging/debugging
// purposes; not part of the wire protocol response format.
func renderLine(attrs []plan.AttrValue) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Name, a.Value))
	}
	return strings.Join(parts, ", ")
}
