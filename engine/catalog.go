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

package engine

import (
	"sort"
	"strings"
	"sync"

	"github.com/eventdb/eventdb/lang"
)

type eventKey struct {
	stream lang.StreamName
	event  lang.EventName
}

type attrKey struct {
	stream lang.StreamName
	event  lang.EventName
	attr   lang.AttributeName
}

// catalog is the schema half of the engine's state: the set of known
// streams, the events declared on them, and the typed attributes
// declared on each event. A single RWMutex guards all three maps
// together since schema mutation (create) is rare relative to the
// read traffic from Check operations and ShowSchema.
type catalog struct {
	mu         sync.RWMutex
	streams    map[lang.StreamName]struct{}
	events     map[eventKey]struct{}
	attributes map[attrKey]lang.TypeTag
}

func newCatalog() *catalog {
	return &catalog{
		streams:    make(map[lang.StreamName]struct{}),
		events:     make(map[eventKey]struct{}),
		attributes: make(map[attrKey]lang.TypeTag),
	}
}

func (c *catalog) hasStream(s lang.StreamName) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.streams[s]
	return ok
}

func (c *catalog) hasEvent(s lang.StreamName, e lang.EventName) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.events[eventKey{s, e}]
	return ok
}

func (c *catalog) hasAttribute(s lang.StreamName, e lang.EventName, a lang.AttributeName) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.attributes[attrKey{s, e, a}]
	return ok
}

// AttributeType implements plan.CatalogReader, letting the planner
// check type coherence on `add` literals ahead of execution.
func (c *catalog) AttributeType(s lang.StreamName, e lang.EventName, a lang.AttributeName) (lang.TypeTag, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.attributes[attrKey{s, e, a}]
	return t, ok
}

// createStream is idempotent: inserting an already-present stream is
// a no-op success.
func (c *catalog) createStream(s lang.StreamName) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streams[s] = struct{}{}
}

// createEvent requires its stream to already exist (the planner emits
// CheckStreamExists immediately before this operation). Re-creating an
// existing event succeeds idempotently without touching its
// attributes.
func (c *catalog) createEvent(s lang.StreamName, e lang.EventName) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.streams[s]; !ok {
		return newErr(MissingStream, "stream %q does not exist", s)
	}
	c.events[eventKey{s, e}] = struct{}{}
	return nil
}

// createAttribute requires (stream,event) to exist. Re-declaring an
// attribute with the same type succeeds idempotently; a different
// type is a Conflict::Attribute.
func (c *catalog) createAttribute(s lang.StreamName, e lang.EventName, a lang.AttributeName, t lang.TypeTag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.events[eventKey{s, e}]; !ok {
		return newErr(MissingEvent, "event %q on stream %q does not exist", e, s)
	}

	key := attrKey{s, e, a}
	if existing, ok := c.attributes[key]; ok {
		if existing != t {
			return newErr(ConflictAttribute,
				"attribute %q on %s.%s already declared as %s, cannot redeclare as %s",
				a, s, e, existing, t)
		}
		return nil
	}

	c.attributes[key] = t
	return nil
}

// render produces a deterministic textual summary of the catalog,
// sorted so that repeated calls against the same state are byte
// identical.
func (c *catalog) render() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder

	streams := make([]string, 0, len(c.streams))
	for s := range c.streams {
		streams = append(streams, string(s))
	}
	sort.Strings(streams)

	for _, s := range streams {
		b.WriteString("stream " + s + "\n")

		events := make([]string, 0)
		for k := range c.events {
			if string(k.stream) == s {
				events = append(events, string(k.event))
			}
		}
		sort.Strings(events)

		for _, e := range events {
			b.WriteString("  event " + e + "\n")

			attrs := make([]string, 0)
			types := make(map[string]lang.TypeTag)
			for k, t := range c.attributes {
				if string(k.stream) == s && string(k.event) == e {
					attrs = append(attrs, string(k.attr))
					types[string(k.attr)] = t
				}
			}
			sort.Strings(attrs)

			for _, a := range attrs {
				b.WriteString("    " + a + " " + types[a].String() + "\n")
			}
		}
	}

	if b.Len() == 0 {
		return "schema is empty"
	}

	return b.String()
}
