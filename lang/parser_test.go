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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCreateStream(t *testing.T) {
	Convey("create stream account; parses to a single CreateCommand", t, func() {
		tx, err := Parse("create stream account;")
		So(err, ShouldBeNil)
		So(len(tx.Commands), ShouldEqual, 1)

		cmd, ok := tx.Commands[0].(CreateCommand)
		So(ok, ShouldBeTrue)

		entity, ok := cmd.Entity.(StreamEntity)
		So(ok, ShouldBeTrue)
		So(entity.Name, ShouldEqual, StreamName("account"))
	})
}

func TestParseCreateEvent(t *testing.T) {
	Convey("create event with attributes parses name, stream and attrs in order", t, func() {
		tx, err := Parse("create event AccountCreated(owner string, amount int) on account;")
		So(err, ShouldBeNil)

		cmd := tx.Commands[0].(CreateCommand)
		entity := cmd.Entity.(EventEntity)

		So(entity.Name, ShouldEqual, EventName("AccountCreated"))
		So(entity.Stream, ShouldEqual, StreamName("account"))
		So(len(entity.Attrs), ShouldEqual, 2)
		So(entity.Attrs[0].Name, ShouldEqual, AttributeName("owner"))
		So(entity.Attrs[0].Type, ShouldEqual, TypeString)
		So(entity.Attrs[1].Name, ShouldEqual, AttributeName("amount"))
		So(entity.Attrs[1].Type, ShouldEqual, TypeInt)
	})
}

func TestParseAdd(t *testing.T) {
	Convey("add parses event, attr values and the target stream key", t, func() {
		tx, err := Parse(`add AccountCreated(owner="a", amount=10) to account(id="123");`)
		So(err, ShouldBeNil)

		cmd := tx.Commands[0].(AddCommand)
		So(cmd.Event, ShouldEqual, EventName("AccountCreated"))
		So(cmd.Stream, ShouldEqual, StreamName("account"))
		So(cmd.StreamKey, ShouldEqual, "123")
		So(len(cmd.Attrs), ShouldEqual, 2)
		So(cmd.Attrs[0].Value, ShouldResemble, StringValue("a"))
		So(cmd.Attrs[1].Value, ShouldResemble, IntValue(10))
	})
}

func TestParseShowSchema(t *testing.T) {
	Convey("show schema; parses to ShowCommand{SchemaEntity}", t, func() {
		tx, err := Parse("show schema;")
		So(err, ShouldBeNil)
		cmd, ok := tx.Commands[0].(ShowCommand)
		So(ok, ShouldBeTrue)
		_, ok = cmd.Entity.(SchemaEntity)
		So(ok, ShouldBeTrue)
	})
}

func TestParseShowUnsupportedEntity(t *testing.T) {
	Convey("show anything other than schema is a ParseError", t, func() {
		_, err := Parse("show widgets;")
		So(err, ShouldNotBeNil)
	})
}

func TestParseFindWithWhereAndLimit(t *testing.T) {
	Convey("find parses projections, predicates and an optional limit", t, func() {
		tx, err := Parse(`find sum(account.amount) where account.user == "u" limit 10;`)
		So(err, ShouldBeNil)

		cmd := tx.Commands[0].(FindCommand)
		So(len(cmd.Projections), ShouldEqual, 1)
		So(len(cmd.Predicates), ShouldEqual, 1)
		So(cmd.Limit, ShouldNotBeNil)
		So(*cmd.Limit, ShouldEqual, 10)

		agg, ok := cmd.Projections[0].Expr.(AggregateExpr)
		So(ok, ShouldBeTrue)
		So(agg.Fn, ShouldEqual, AggSum)
	})
}

func TestParseMultipleCommands(t *testing.T) {
	Convey("multiple ;-terminated commands parse into one Transaction", t, func() {
		tx, err := Parse("create stream account; create stream ledger;")
		So(err, ShouldBeNil)
		So(len(tx.Commands), ShouldEqual, 2)
	})
}

func TestParseMissingEndIsParseError(t *testing.T) {
	Convey("a missing terminator is a ParseError, not a bare EOF", t, func() {
		_, err := Parse("create stream account")
		So(err, ShouldNotBeNil)
		_, ok := err.(*ParseError)
		So(ok, ShouldBeTrue)
	})
}

func TestParseUnaryMinus(t *testing.T) {
	Convey("a leading - on a literal produces a UnaryExpr", t, func() {
		tx, err := Parse("find -5;")
		So(err, ShouldBeNil)
		cmd := tx.Commands[0].(FindCommand)
		_, ok := cmd.Projections[0].Expr.(UnaryExpr)
		So(ok, ShouldBeTrue)
	})
}
