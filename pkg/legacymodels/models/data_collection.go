package models

import (
	"database/sql"
	"strings"
)

// DataEntry is a single overlay attribute. An invalid Value is an explicit
// null, meaning "not set" rather than "delete".
type DataEntry struct {
	Name  string
	Value sql.NullString
}

// DataCollection is the sparse attribute overlay held in memory per model
// instance. Names compare case-insensitively but keep the casing of their
// first write. Names colliding with a fixed column are ignored entirely, the
// fixed columns always win.
type DataCollection struct {
	reserved map[string]struct{}
	index    map[string]int
	entries  []DataEntry
}

// NewDataCollection creates an empty overlay. The reserved names are the
// fixed column names of the owning model.
func NewDataCollection(reserved ...string) *DataCollection {
	r := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		r[strings.ToLower(name)] = struct{}{}
	}
	return &DataCollection{
		reserved: r,
		index:    make(map[string]int),
	}
}

// Set stores a concrete value for the attribute.
func (c *DataCollection) Set(name, value string) {
	c.put(name, sql.NullString{String: value, Valid: true})
}

// SetNull records the attribute with an explicit null value. Null entries are
// never materialized as rows and leave any stored row untouched on save.
func (c *DataCollection) SetNull(name string) {
	c.put(name, sql.NullString{})
}

func (c *DataCollection) put(name string, value sql.NullString) {
	key := strings.ToLower(name)
	if _, ok := c.reserved[key]; ok {
		return
	}
	if i, ok := c.index[key]; ok {
		c.entries[i].Value = value
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, DataEntry{Name: name, Value: value})
}

// Get returns the value for the attribute. The bool is false when the
// attribute is absent or explicitly null.
func (c *DataCollection) Get(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	if i, ok := c.index[strings.ToLower(name)]; ok && c.entries[i].Value.Valid {
		return c.entries[i].Value.String, true
	}
	return "", false
}

// Remove drops the attribute from the overlay. A removed attribute is deleted
// from the store on the next save.
func (c *DataCollection) Remove(name string) {
	key := strings.ToLower(name)
	i, ok := c.index[key]
	if !ok {
		return
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	delete(c.index, key)
	for k, j := range c.index {
		if j > i {
			c.index[k] = j - 1
		}
	}
}

// Keys returns the attribute names in insertion order.
func (c *DataCollection) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.Name)
	}
	return keys
}

// Entries returns a copy of the overlay entries in insertion order.
func (c *DataCollection) Entries() []DataEntry {
	if c == nil {
		return nil
	}
	out := make([]DataEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *DataCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
