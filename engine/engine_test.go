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
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eventdb/eventdb/lang"
	"github.com/eventdb/eventdb/plan"
)

func mustPlan(t *testing.T, e *Engine, input string) *plan.ExecutionPlan {
	t.Helper()
	tx, err := lang.Parse(input)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	p, err := plan.Plan(tx, e.Catalog())
	if err != nil {
		t.Fatalf("unexpected plan error: %s", err)
	}
	return p
}

func TestIdempotentCreateStream(t *testing.T) {
	Convey("CreateStream(S) twice both succeed and S appears exactly once", t, func() {
		e := New()
		for i := 0; i < 2; i++ {
			_, err := e.Exec(mustPlan(t, e, "create stream account;"))
			So(err, ShouldBeNil)
		}
		So(e.catalog.hasStream("account"), ShouldBeTrue)
		So(len(e.catalog.streams), ShouldEqual, 1)
	})
}

func TestCreateEventRequiresStream(t *testing.T) {
	Convey("creating an event on a nonexistent stream fails MissingStream", t, func() {
		e := New()
		_, err := e.Exec(mustPlan(t, e, "create event AccountCreated(owner string) on account;"))
		So(err, ShouldNotBeNil)
		ee, ok := err.(*EngineError)
		So(ok, ShouldBeTrue)
		So(ee.Kind, ShouldEqual, MissingStream)
	})
}

func TestCreateAttributeConflict(t *testing.T) {
	Convey("redeclaring an attribute with a different type is Conflict::Attribute", t, func() {
		e := New()
		_, err := e.Exec(mustPlan(t, e, "create stream account;"))
		So(err, ShouldBeNil)
		_, err = e.Exec(mustPlan(t, e, "create event AccountCreated(owner string) on account;"))
		So(err, ShouldBeNil)

		err = e.catalog.createAttribute("account", "AccountCreated", "owner", lang.TypeInt)
		So(err, ShouldNotBeNil)
		ee := err.(*EngineError)
		So(ee.Kind, ShouldEqual, ConflictAttribute)
	})
}

func TestAppendVersionDensityAndTimestamps(t *testing.T) {
	Convey("n successful appends to (S,K) produce versions 1..n with non-decreasing timestamps", t, func() {
		e := New()
		e.Exec(mustPlan(t, e, "create stream account;"))
		e.Exec(mustPlan(t, e, "create event AccountCreated(owner string, amount int) on account;"))

		for i := 0; i < 5; i++ {
			_, err := e.Exec(mustPlan(t, e, `add AccountCreated(owner="a", amount=10) to account(id="x");`))
			So(err, ShouldBeNil)
		}

		records, ok := e.Records("account", "x")
		So(ok, ShouldBeTrue)
		So(len(records), ShouldEqual, 5)

		for i, r := range records {
			So(r.Version, ShouldEqual, uint64(i+1))
			if i > 0 {
				So(r.Timestamp, ShouldBeGreaterThanOrEqualTo, records[i-1].Timestamp)
			}
		}
	})
}

func TestAppendMissingStreamLeavesNoLogEntry(t *testing.T) {
	Convey("appending against a schema without the stream fails and leaves no log", t, func() {
		e := New()
		_, err := e.Exec(mustPlan(t, e, `add AccountCreated(owner="a") to account(id="x");`))
		So(err, ShouldNotBeNil)
		ee := err.(*EngineError)
		So(ee.Kind, ShouldEqual, MissingStream)

		_, ok := e.Records("account", "x")
		So(ok, ShouldBeFalse)
	})
}

func TestConcurrentAppendsSameKeySerialize(t *testing.T) {
	Convey("m concurrent appends to the same (S,K) all succeed with versions a permutation of 1..m", t, func() {
		e := New()
		e.Exec(mustPlan(t, e, "create stream account;"))
		e.Exec(mustPlan(t, e, "create event AccountCreated(owner string) on account;"))

		const m = 25
		var wg sync.WaitGroup
		errs := make([]error, m)

		for i := 0; i < m; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := e.Exec(mustPlan(t, e, `add AccountCreated(owner="a") to account(id="x");`))
				errs[i] = err
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			So(err, ShouldBeNil)
		}

		records, ok := e.Records("account", "x")
		So(ok, ShouldBeTrue)
		So(len(records), ShouldEqual, m)

		seen := make(map[uint64]bool)
		for _, r := range records {
			seen[r.Version] = true
		}
		So(len(seen), ShouldEqual, m)
		for v := uint64(1); v <= m; v++ {
			So(seen[v], ShouldBeTrue)
		}
	})
}

func TestConcurrentAppendsDistinctKeysIndependent(t *testing.T) {
	Convey("concurrent appends to distinct (S,K) pairs never fail due to concurrency", t, func() {
		e := New()
		e.Exec(mustPlan(t, e, "create stream account;"))
		e.Exec(mustPlan(t, e, "create event AccountCreated(owner string) on account;"))

		const n = 20
		var wg sync.WaitGroup
		errs := make([]error, n)

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := string(rune('a' + i))
				_, err := e.Exec(mustPlan(t, e, `add AccountCreated(owner="a") to account(id="`+key+`");`))
				errs[i] = err
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			So(err, ShouldBeNil)
		}

		for i := 0; i < n; i++ {
			key := string(rune('a' + i))
			records, ok := e.Records("account", key)
			So(ok, ShouldBeTrue)
			So(len(records), ShouldEqual, 1)
			So(records[0].Version, ShouldEqual, uint64(1))
		}
	})
}

func TestShowSchemaIsDeterministic(t *testing.T) {
	Convey("rendering the schema twice in a row yields the same text", t, func() {
		e := New()
		e.Exec(mustPlan(t, e, "create stream account;"))
		e.Exec(mustPlan(t, e, "create event AccountCreated(owner string, amount int) on account;"))

		p := mustPlan(t, e, "show schema;")
		first, err := e.Exec(p)
		So(err, ShouldBeNil)
		second, err := e.Exec(p)
		So(err, ShouldBeNil)
		So(first, ShouldEqual, second)
	})
}

func TestFindIsUnsupported(t *testing.T) {
	Convey("find is planned but rejected by the engine as unsupported", t, func() {
		e := New()
		_, err := e.Exec(mustPlan(t, e, "find sum(account.amount);"))
		So(err, ShouldNotBeNil)
		ee := err.(*EngineError)
		So(ee.Kind, ShouldEqual, Unsupported)
	})
}
