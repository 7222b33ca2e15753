package resource

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/wippyai/juce-runtime/errors"
)

const (
	chunkBits = 8
	chunkSize = 1 << chunkBits
	maxChunks = 1 << 12
)

// MaxHandles is the number of values a table can hold at once.
const MaxHandles = chunkSize * maxChunks

type slot struct {
	value  any
	word   atomic.Uint64 // generation<<32 | State
	typeID uint32
}

type chunk [chunkSize]slot

func pack(gen uint32, s State) uint64 { return uint64(gen)<<32 | uint64(s) }
func unpack(w uint64) (uint32, State) { return uint32(w >> 32), State(uint32(w)) }

// Table maps handles to Go values with exclusive-borrow tracking.
//
// State, Borrow and Return only perform atomic operations on a slot, so
// they are safe to call from a real-time thread. Insert and Drop take a
// mutex for slot allocation; Get and TypeID take it to read the slot
// contents.
type Table struct {
	chunks    [maxChunks]atomic.Pointer[chunk]
	observers map[int]Observer
	freeList  []uint32
	next      uint32
	nextObs   int
	live      atomic.Int64
	mu        sync.Mutex
	obsMu     sync.RWMutex
	closed    bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		freeList:  make([]uint32, 0, 16),
		observers: make(map[int]Observer),
	}
}

func (t *Table) slot(index uint32) *slot {
	c := t.chunks[index>>chunkBits].Load()
	if c == nil {
		return nil
	}
	return &c[index&(chunkSize-1)]
}

func (t *Table) lookup(h Handle) (*slot, uint64, bool) {
	idx, ok := h.index()
	if !ok || idx>>chunkBits >= maxChunks {
		return nil, 0, false
	}
	s := t.slot(idx)
	if s == nil {
		return nil, 0, false
	}
	return s, s.word.Load(), true
}

// Insert stores a value and returns its handle.
func (t *Table) Insert(typeID uint32, value any) (Handle, error) {
	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()
		return 0, errors.Closed(errors.PhaseBridge, "resource table")
	}

	var idx uint32
	if n := len(t.freeList); n > 0 {
		idx = t.freeList[0]
		t.freeList = t.freeList[1:]
	} else {
		if t.next >= MaxHandles {
			t.mu.Unlock()
			return 0, errors.New(errors.PhaseBridge, errors.KindOutOfBounds).
				Detail("resource table full (%d handles)", MaxHandles).Build()
		}
		idx = t.next
		t.next++
		if t.chunks[idx>>chunkBits].Load() == nil {
			t.chunks[idx>>chunkBits].Store(new(chunk))
		}
	}

	s := t.slot(idx)
	gen, _ := unpack(s.word.Load())
	gen++
	if gen == 0 {
		gen = 1
	}
	s.value = value
	s.typeID = typeID
	s.word.Store(pack(gen, StateIdle))
	t.live.Add(1)
	t.mu.Unlock()

	h := makeHandle(idx, gen)
	t.notify(Event{Type: EventCreated, Handle: h, TypeID: typeID, Value: value})
	return h, nil
}

// Get returns the value behind a live handle without borrowing it.
func (t *Table) Get(h Handle) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.occupied(h)
	if !ok {
		return nil, false
	}
	return s.value, true
}

// TypeID returns the type ID recorded for a live handle.
func (t *Table) TypeID(h Handle) (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.occupied(h)
	if !ok {
		return 0, false
	}
	return s.typeID, true
}

// occupied returns the slot behind h when it holds a value. Callers hold t.mu.
func (t *Table) occupied(h Handle) (*slot, bool) {
	s, w, ok := t.lookup(h)
	if !ok {
		return nil, false
	}
	gen, st := unpack(w)
	if gen != h.generation() || (st != StateIdle && st != StateBorrowed) {
		return nil, false
	}
	return s, true
}

// valueName names the type of the value behind h for error messages.
func (t *Table) valueName(h Handle) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.occupied(h)
	if !ok {
		return "nil"
	}
	return typeName(s.value)
}

// State returns the current state of the slot behind h. Stale handles report
// StateDropped.
func (t *Table) State(h Handle) State {
	_, w, ok := t.lookup(h)
	if !ok {
		return StateFree
	}
	gen, st := unpack(w)
	if gen != h.generation() {
		return StateDropped
	}
	return st
}

// Borrow takes the exclusive borrow of h. It fails with a reentrant-borrow
// error while another borrow is outstanding and with a use-after-drop error
// for dropped or stale handles.
func (t *Table) Borrow(h Handle) (any, error) {
	s, w, ok := t.lookup(h)
	if !ok {
		return nil, t.reject(h, errors.UseAfterDrop("handle", uint64(h)))
	}

	for {
		gen, st := unpack(w)
		if gen != h.generation() {
			return nil, t.reject(h, errors.UseAfterDrop("handle", uint64(h)))
		}
		switch st {
		case StateIdle:
			if s.word.CompareAndSwap(w, pack(gen, StateBorrowed)) {
				return s.value, nil
			}
			w = s.word.Load()
		case StateBorrowed:
			return nil, t.reject(h, errors.ReentrantBorrow(t.valueName(h), uint64(h)))
		default:
			return nil, t.reject(h, errors.UseAfterDrop("handle", uint64(h)))
		}
	}
}

// Return ends the borrow taken by Borrow.
func (t *Table) Return(h Handle) bool {
	s, w, ok := t.lookup(h)
	if !ok {
		return false
	}
	gen, st := unpack(w)
	if gen != h.generation() || st != StateBorrowed {
		return false
	}
	return s.word.CompareAndSwap(w, pack(gen, StateIdle))
}

// Drop removes the value behind h and calls its Drop method when it has one.
// A handle can be dropped once; a second attempt yields a double-drop error,
// dropping while borrowed yields a reentrant-borrow error.
func (t *Table) Drop(h Handle) (any, error) {
	s, w, ok := t.lookup(h)
	if !ok {
		return nil, t.reject(h, errors.DoubleDrop(uint64(h)))
	}

	for {
		gen, st := unpack(w)
		if gen != h.generation() {
			return nil, t.reject(h, errors.DoubleDrop(uint64(h)))
		}
		switch st {
		case StateIdle:
			if !s.word.CompareAndSwap(w, pack(gen, StateDropped)) {
				w = s.word.Load()
				continue
			}
		case StateBorrowed:
			return nil, t.reject(h, errors.ReentrantBorrow(t.valueName(h), uint64(h)))
		default:
			return nil, t.reject(h, errors.DoubleDrop(uint64(h)))
		}
		break
	}

	t.mu.Lock()
	value, typeID := s.value, s.typeID
	s.value = nil
	idx, _ := h.index()
	t.freeList = append(t.freeList, idx)
	t.mu.Unlock()
	t.live.Add(-1)

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDropped, Handle: h, TypeID: typeID, Value: value})
	return value, nil
}

// Len returns the number of live values.
func (t *Table) Len() int {
	return int(t.live.Load())
}

// Each iterates over live values in handle index order. fn must not insert
// into or drop from the table.
func (t *Table) Each(fn func(Handle, uint32, any) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for idx := uint32(0); idx < t.next; idx++ {
		s := t.slot(idx)
		if s == nil {
			continue
		}
		gen, st := unpack(s.word.Load())
		if st != StateIdle && st != StateBorrowed {
			continue
		}
		if !fn(makeHandle(idx, gen), s.typeID, s.value) {
			return
		}
	}
}

// Subscribe adds an observer and returns a function that removes it.
func (t *Table) Subscribe(o Observer) (unsubscribe func()) {
	t.obsMu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = o
	t.obsMu.Unlock()

	return func() {
		t.obsMu.Lock()
		delete(t.observers, id)
		t.obsMu.Unlock()
	}
}

// Close drops every remaining value and stops accepting inserts. Values that
// are borrowed at close time are reported and left in place.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	var handles []Handle
	t.Each(func(h Handle, _ uint32, _ any) bool {
		handles = append(handles, h)
		return true
	})
	sort.Slice(handles, func(i, j int) bool { return uint32(handles[i]) < uint32(handles[j]) })

	var err error
	for _, h := range handles {
		if _, dropErr := t.Drop(h); dropErr != nil {
			err = multierr.Append(err, dropErr)
		}
	}
	return err
}

func (t *Table) reject(h Handle, err *errors.Error) error {
	t.notify(Event{Type: EventRejected, Handle: h, Err: err})
	return err
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
