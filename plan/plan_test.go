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

package plan

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eventdb/eventdb/lang"
)

func mustParse(t *testing.T, input string) *lang.Transaction {
	t.Helper()
	tx, err := lang.Parse(input)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	return tx
}

func TestPlanCreateStream(t *testing.T) {
	Convey("create stream S lowers to exactly [CreateStream(S)]", t, func() {
		tx := mustParse(t, "create stream account;")
		p, err := Plan(tx, nil)
		So(err, ShouldBeNil)
		So(len(p.Operations), ShouldEqual, 1)
		op, ok := p.Operations[0].(CreateStream)
		So(ok, ShouldBeTrue)
		So(op.Stream, ShouldEqual, lang.StreamName("account"))
	})
}

func TestPlanCreateEvent(t *testing.T) {
	Convey("create event lowers to CheckStreamExists, CreateEvent, then CreateAttribute in declaration order", t, func() {
		tx := mustParse(t, "create event AccountCreated(owner string, amount int) on account;")
		p, err := Plan(tx, nil)
		So(err, ShouldBeNil)
		So(len(p.Operations), ShouldEqual, 4)

		_, ok := p.Operations[0].(CheckStreamExists)
		So(ok, ShouldBeTrue)

		ce, ok := p.Operations[1].(CreateEvent)
		So(ok, ShouldBeTrue)
		So(ce.Event, ShouldEqual, lang.EventName("AccountCreated"))

		a0 := p.Operations[2].(CreateAttribute)
		So(a0.Attribute, ShouldEqual, lang.AttributeName("owner"))
		So(a0.Type, ShouldEqual, lang.TypeString)

		a1 := p.Operations[3].(CreateAttribute)
		So(a1.Attribute, ShouldEqual, lang.AttributeName("amount"))
		So(a1.Type, ShouldEqual, lang.TypeInt)
	})
}

func TestPlanAdd(t *testing.T) {
	Convey("add lowers to a check per attribute then a single AppendEvent", t, func() {
		tx := mustParse(t, `add AccountCreated(owner="a", amount=10) to account(id="123");`)
		p, err := Plan(tx, nil)
		So(err, ShouldBeNil)
		So(len(p.Operations), ShouldEqual, 5)

		last, ok := p.Operations[4].(AppendEvent)
		So(ok, ShouldBeTrue)
		So(last.Stream, ShouldEqual, lang.StreamName("account"))
		So(last.Key, ShouldEqual, "123")
		So(len(last.AttrValues), ShouldEqual, 2)
	})
}

func TestPlanShowSchema(t *testing.T) {
	Convey("show schema lowers to [ShowSchema]", t, func() {
		tx := mustParse(t, "show schema;")
		p, err := Plan(tx, nil)
		So(err, ShouldBeNil)
		So(len(p.Operations), ShouldEqual, 1)
		_, ok := p.Operations[0].(ShowSchema)
		So(ok, ShouldBeTrue)
	})
}

func TestPlanFindIsOpaque(t *testing.T) {
	Convey("find lowers to a single opaque Query operation", t, func() {
		tx := mustParse(t, "find sum(account.amount);")
		p, err := Plan(tx, nil)
		So(err, ShouldBeNil)
		So(len(p.Operations), ShouldEqual, 1)
		_, ok := p.Operations[0].(Query)
		So(ok, ShouldBeTrue)
	})
}

type fakeAttrKey struct {
	stream lang.StreamName
	event  lang.EventName
	attr   lang.AttributeName
}

type fakeCatalog map[fakeAttrKey]lang.TypeTag

func (f fakeCatalog) AttributeType(s lang.StreamName, e lang.EventName, a lang.AttributeName) (lang.TypeTag, bool) {
	t, ok := f[fakeAttrKey{s, e, a}]
	return t, ok
}

func TestPlanAddRejectsTypeIncoherentLiteral(t *testing.T) {
	Convey("a literal incompatible with the declared attribute type is a PlanError", t, func() {
		catalog := fakeCatalog{
			{"account", "AccountCreated", "amount"}: lang.TypeInt,
		}
		tx := mustParse(t, `add AccountCreated(amount="not a number") to account(id="123");`)
		_, err := Plan(tx, catalog)
		So(err, ShouldNotBeNil)
	})
}

func TestPlanAddAllowsIntPromotionToFloat(t *testing.T) {
	Convey("an int literal coheres with a declared float attribute", t, func() {
		catalog := fakeCatalog{
			fakeAttrKey{"account", "AccountCreated", "amount"}: lang.TypeFloat,
		}
		tx := mustParse(t, `add AccountCreated(amount=10) to account(id="123");`)
		_, err := Plan(tx, catalog)
		So(err, ShouldBeNil)
	})
}
