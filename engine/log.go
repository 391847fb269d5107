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
	"time"

	"github.com/eventdb/eventdb/lang"
	"github.com/eventdb/eventdb/plan"
)

type logKey struct {
	stream lang.StreamName
	key    string
}

// sequence is the per-(stream,key) append-only event log. Its own
// lock serializes appends to this one key without blocking appends to
// any other key.
type sequence struct {
	mu      sync.RWMutex
	records []EventRecord
}

func (s *sequence) snapshot() []EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]EventRecord, len(s.records))
	copy(out, s.records)
	return out
}

// logStore is the outer map of (stream,key) to its sequence. It has
// its own lock, acquired and released independently of any sequence
// lock: readers take the outer RLock just long enough to find (or
// fail to find) a sequence, then drop it before touching the
// sequence's own lock. A writer only takes the outer Lock to insert a
// sequence that does not yet exist. The outer lock is never held
// while waiting on an inner lock, and the inner lock is never
// acquired before the outer lock has been released — reversing that
// order is how two-level locking deadlocks.
type logStore struct {
	mu   sync.RWMutex
	logs map[logKey]*sequence
}

func newLogStore() *logStore {
	return &logStore{logs: make(map[logKey]*sequence)}
}

func (ls *logStore) find(s lang.StreamName, key string) (*sequence, bool) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	seq, ok := ls.logs[logKey{s, key}]
	return seq, ok
}

// getOrCreate returns the sequence for (s,key), creating an empty one
// under the outer write lock if this is the first append to that
// pair. The common case — the sequence already exists — only ever
// takes the outer read lock.
func (ls *logStore) getOrCreate(s lang.StreamName, key string) *sequence {

	if seq, ok := ls.find(s, key); ok {
		return seq
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	k := logKey{s, key}
	if seq, ok := ls.logs[k]; ok {
		return seq
	}

	seq := &sequence{}
	ls.logs[k] = seq
	return seq

}

// appendRecord assigns the next dense version and a clamped-monotonic
// timestamp, then pushes the record. clock normally returns
// time.Now, overridable in tests.
func appendRecord(seq *sequence, stream lang.StreamName, key string, event lang.EventName, attrs []plan.AttrValue, clock func() time.Time) EventRecord {

	seq.mu.Lock()
	defer seq.mu.Unlock()

	var nextVersion uint64 = 1
	var timestamp int64

	now := clock().UnixMilli()

	if n := len(seq.records); n > 0 {
		last := seq.records[n-1]
		nextVersion = last.Version + 1
		timestamp = now
		if timestamp < last.Timestamp {
			// Clock moved backwards (e.g. an NTP step): clamp to the
			// last recorded timestamp rather than letting time run
			// backwards within a sequence.
			timestamp = last.Timestamp
		}
	} else {
		timestamp = now
	}

	record := EventRecord{
		Stream:     stream,
		Key:        key,
		Event:      event,
		Version:    nextVersion,
		Timestamp:  timestamp,
		Attributes: attrs,
	}

	seq.records = append(seq.records, record)

	return record

}
