// Package rodata implements the label-interning table codegen uses to
// emit .rodata entries for string and real-constant literals (§4.3
// "String rodata interning").
//
// This is the teacher's stack.Stack repurposed: same mutex-guarded
// append-only slice discipline, adapted from an LIFO stack of strings
// into a dedup table keyed by exact value, grounded on
// original_source/src/x86_64_compiler.rs's request_label. Label ids are
// NOT assigned internally — the spec requires them to be drawn from the
// same monotonic counter codegen uses for control-flow labels (§4.3), so
// the Table only records (id, value) pairs the caller already minted.
package rodata

import "sync"

// Entry is one interned literal together with the label id it was
// assigned when first requested.
type Entry struct {
	ID    uint32
	Value string
}

// Table interns literal values against caller-supplied label ids.
// Requesting the same value twice returns the id it was first inserted
// under.
type Table struct {
	lock    sync.Mutex
	entries []Entry
	byValue map[string]uint32
}

// New returns an empty Table.
func New() *Table {
	return &Table{byValue: make(map[string]uint32)}
}

// Lookup returns the label id value was previously Insert-ed under, if
// any.
func (t *Table) Lookup(value string) (uint32, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	id, ok := t.byValue[value]
	return id, ok
}

// Insert records value under label id. Re-inserting an already-seen
// value is a no-op; callers should Lookup first (see
// compiler.generator.requestLabel).
func (t *Table) Insert(id uint32, value string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if _, ok := t.byValue[value]; ok {
		return
	}
	t.byValue[value] = id
	t.entries = append(t.entries, Entry{ID: id, Value: value})
}

// Len returns the number of distinct interned values.
func (t *Table) Len() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.entries)
}

// Entries returns the interned (id, value) pairs in allocation order.
func (t *Table) Entries() []Entry {
	t.lock.Lock()
	defer t.lock.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
