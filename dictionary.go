// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"fmt"
	"iter"
	"unsafe"
)

// Slot states for the open-addressed table. A zero-filled allocation
// reads back as all-empty, so fresh tables need no initialization pass.
const (
	slotEmpty uint8 = iota
	slotOccupied
	slotDeleted
)

// dictSlot is one probe slot of the table. Key and value types must not
// contain Go pointers.
type dictSlot[K comparable, V any] struct {
	key   K
	value V
	state uint8
}

// Dictionary is a hash table with linear probing stored in one raw
// allocation. Keys hash by their raw bytes, so key types with internal
// padding should be avoided; scalar keys and padding-free structs are
// reliable.
type Dictionary[K comparable, V any] struct {
	slots    Allocation
	count    int
	capacity int
}

// NewDictionary creates a dictionary with room for at least capacity
// entries before the first rehash. Capacity must be positive and is
// rounded up to a power of two.
func NewDictionary[K comparable, V any](capacity int) *Dictionary[K, V] {
	if capacity <= 0 {
		panic(fmt.Sprintf("unmanaged: dictionary capacity %d, must be positive", capacity))
	}
	capacity = ceilPowerOfTwo(capacity)
	return &Dictionary[K, V]{
		slots:    Allocate(capacity * elementSize[dictSlot[K, V]]()),
		capacity: capacity,
	}
}

// Count returns the number of stored entries.
func (d *Dictionary[K, V]) Count() int { return d.count }

// Capacity returns the allocated slot count.
func (d *Dictionary[K, V]) Capacity() int { return d.capacity }

// ContainsKey reports whether key is present.
func (d *Dictionary[K, V]) ContainsKey(key K) bool {
	_, ok := d.lookup(key)
	return ok
}

// TryGet returns the value stored under key, and whether it was found.
func (d *Dictionary[K, V]) TryGet(key K) (V, bool) {
	if index, ok := d.lookup(key); ok {
		return d.all()[index].value, true
	}
	var zero V
	return zero, false
}

// Get returns the value stored under key, panicking when the key is
// absent. Use TryGet when absence is expected.
func (d *Dictionary[K, V]) Get(key K) V {
	value, ok := d.TryGet(key)
	if !ok {
		panic(fmt.Sprintf("unmanaged: key %v not found in dictionary", key))
	}
	return value
}

// Add stores a new entry, panicking when the key already exists.
func (d *Dictionary[K, V]) Add(key K, value V) {
	if !d.TryAdd(key, value) {
		panic(fmt.Sprintf("unmanaged: key %v already present in dictionary", key))
	}
}

// TryAdd stores a new entry and reports whether it was added; an
// existing key is left untouched.
func (d *Dictionary[K, V]) TryAdd(key K, value V) bool {
	if _, ok := d.lookup(key); ok {
		return false
	}
	d.put(key, value)
	return true
}

// Set stores value under key, inserting or overwriting.
func (d *Dictionary[K, V]) Set(key K, value V) {
	if index, ok := d.lookup(key); ok {
		d.all()[index].value = value
		return
	}
	d.put(key, value)
}

// Remove deletes key and returns its value, panicking when the key is
// absent.
func (d *Dictionary[K, V]) Remove(key K) V {
	value, ok := d.TryRemove(key)
	if !ok {
		panic(fmt.Sprintf("unmanaged: key %v not found in dictionary", key))
	}
	return value
}

// TryRemove deletes key when present, returning the removed value and
// whether a removal happened.
func (d *Dictionary[K, V]) TryRemove(key K) (V, bool) {
	index, ok := d.lookup(key)
	if !ok {
		var zero V
		return zero, false
	}
	s := d.all()
	removed := s[index].value
	var zero dictSlot[K, V]
	s[index] = zero
	s[index].state = slotDeleted
	d.count--
	return removed, true
}

// Clear removes every entry without shrinking the table.
func (d *Dictionary[K, V]) Clear() {
	d.slots.Clear(0, d.capacity*elementSize[dictSlot[K, V]]())
	d.count = 0
}

// All iterates over every entry in table order.
func (d *Dictionary[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s := d.all()
		for i := range s {
			if s[i].state == slotOccupied && !yield(s[i].key, s[i].value) {
				return
			}
		}
	}
}

// Free releases the backing allocation.
func (d *Dictionary[K, V]) Free() {
	d.slots.Free()
	d.count = 0
	d.capacity = 0
}

func (d *Dictionary[K, V]) all() []dictSlot[K, V] {
	return Slice[dictSlot[K, V]](d.slots, 0, d.capacity)
}

// lookup probes for key and returns its slot index when occupied.
func (d *Dictionary[K, V]) lookup(key K) (int, bool) {
	s := d.all()
	mask := d.capacity - 1
	for i, probed := int(hashKey(key))&mask, 0; probed < d.capacity; probed++ {
		switch s[i].state {
		case slotEmpty:
			return 0, false
		case slotOccupied:
			if s[i].key == key {
				return i, true
			}
		}
		i = (i + 1) & mask
	}
	return 0, false
}

// put inserts a key known to be absent, growing at 3/4 load.
func (d *Dictionary[K, V]) put(key K, value V) {
	if d.capacity == 0 {
		panic("unmanaged: use of freed dictionary")
	}
	if (d.count+1)*4 > d.capacity*3 {
		d.rehash(d.capacity * 2)
	}
	s := d.all()
	mask := d.capacity - 1
	i := int(hashKey(key)) & mask
	for s[i].state == slotOccupied {
		i = (i + 1) & mask
	}
	s[i].key = key
	s[i].value = value
	s[i].state = slotOccupied
	d.count++
}

// rehash moves every entry into a fresh table of newCapacity slots and
// frees the old one. Tombstones are dropped in the process.
func (d *Dictionary[K, V]) rehash(newCapacity int) {
	old := d.all()
	oldSlots := d.slots
	d.slots = Allocate(newCapacity * elementSize[dictSlot[K, V]]())
	d.capacity = newCapacity
	d.count = 0
	for i := range old {
		if old[i].state == slotOccupied {
			d.put(old[i].key, old[i].value)
		}
	}
	oldSlots.Free()
}

// hashKey hashes a key by its raw bytes.
func hashKey[K comparable](key K) uint32 {
	b := unsafe.Slice((*byte)(unsafe.Pointer(&key)), unsafe.Sizeof(key))
	return djb2(b)
}

// ceilPowerOfTwo rounds n up to the next power of two.
func ceilPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
