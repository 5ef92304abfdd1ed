package core

import (
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
)

// ID identifies every resource held by a manager. It is the 32-bit FNV-1a
// hash of a logical or file name.
type ID uint32

// EmptyID is the reserved "no resource" identifier.
const EmptyID ID = 0

func (id ID) IsEmpty() bool {
	return id == EmptyID
}

// HashEntry is a single reverse-lookup record.
type HashEntry struct {
	ID   ID
	Name string
}

// HashRegistry converts names to identifiers and remembers the last name
// seen for each identifier so that logs can print something readable.
// The reverse table is diagnostic only: collisions overwrite silently.
type HashRegistry struct {
	mutex   sync.RWMutex
	entries map[ID]string
}

func NewHashRegistry() *HashRegistry {
	return &HashRegistry{
		entries: make(map[ID]string),
	}
}

// HashString computes the identifier of name without registering it.
func HashString(name string) ID {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	id := ID(h.Sum32())
	// 0 is the sentinel, never hand it out.
	if id == EmptyID {
		id = 1
	}
	return id
}

// Hash computes the identifier of name and records id -> name.
func (hr *HashRegistry) Hash(name string) ID {
	id := HashString(name)
	hr.mutex.Lock()
	hr.entries[id] = name
	hr.mutex.Unlock()
	return id
}

// Resolve returns the registered name of id, or "Unknown[<id>]".
func (hr *HashRegistry) Resolve(id ID) string {
	hr.mutex.RLock()
	name, ok := hr.entries[id]
	hr.mutex.RUnlock()
	if ok {
		return name
	}
	return "Unknown[" + strconv.FormatUint(uint64(id), 10) + "]"
}

func (hr *HashRegistry) Exists(id ID) bool {
	hr.mutex.RLock()
	defer hr.mutex.RUnlock()
	_, ok := hr.entries[id]
	return ok
}

// Reset drops every reverse-lookup entry.
func (hr *HashRegistry) Reset() {
	hr.mutex.Lock()
	hr.entries = make(map[ID]string)
	hr.mutex.Unlock()
}

func (hr *HashRegistry) Len() int {
	hr.mutex.RLock()
	defer hr.mutex.RUnlock()
	return len(hr.entries)
}

// Entries returns a snapshot sorted by name.
func (hr *HashRegistry) Entries() []HashEntry {
	hr.mutex.RLock()
	out := make([]HashEntry, 0, len(hr.entries))
	for id, name := range hr.entries {
		out = append(out, HashEntry{ID: id, Name: name})
	}
	hr.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}
