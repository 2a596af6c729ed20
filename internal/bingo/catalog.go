// internal/bingo/catalog.go
//
// Ordered objective catalog with one achieved marker per label.
// Notes:
//   - Insertion order is the export order.
//   - Populate only draws labels whose marker is 0.

package bingo

import "strings"

// Catalog is the ordered objective catalog: label -> achieved marker.
// Labels are unique and trimmed; insertion order is kept for export.
type Catalog struct {
	entries []Entry
	index   map[string]int // label -> position in entries
}

// NewCatalog builds a catalog from labels. Blank labels are skipped and
// duplicates collapse to their first occurrence. Every marker starts at 0.
func NewCatalog(labels []string) *Catalog {
	c := &Catalog{index: make(map[string]int, len(labels))}
	for _, l := range labels {
		c.Add(l)
	}
	return c
}

// Add inserts label with status 0. It reports false for blank or known labels.
func (c *Catalog) Add(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	if _, ok := c.index[label]; ok {
		return false
	}
	c.index[label] = len(c.entries)
	c.entries = append(c.entries, Entry{Label: label})
	return true
}

// Remove deletes label, keeping the order of the remaining entries.
func (c *Catalog) Remove(label string) bool {
	i, ok := c.index[label]
	if !ok {
		return false
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	delete(c.index, label)
	for j := i; j < len(c.entries); j++ {
		c.index[c.entries[j].Label] = j
	}
	return true
}

// Has reports whether label is in the catalog.
func (c *Catalog) Has(label string) bool {
	_, ok := c.index[label]
	return ok
}

// Status returns the achieved marker of label.
func (c *Catalog) Status(label string) (Status, bool) {
	i, ok := c.index[label]
	if !ok {
		return 0, false
	}
	return c.entries[i].Status, true
}

// SetStatus updates the marker of an existing label.
func (c *Catalog) SetStatus(label string, s Status) bool {
	i, ok := c.index[label]
	if !ok {
		return false
	}
	c.entries[i].Status = s
	return true
}

// ResetStatuses clears every marker.
func (c *Catalog) ResetStatuses() {
	for i := range c.entries {
		c.entries[i].Status = StatusIncomplete
	}
}

func (c *Catalog) Len() int { return len(c.entries) }

// Labels returns the labels in catalog order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Label
	}
	return out
}

// Entries returns a copy of the catalog records in order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// available returns the labels whose marker is still 0.
func (c *Catalog) available() []string {
	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Status == StatusIncomplete {
			out = append(out, e.Label)
		}
	}
	return out
}

func (c *Catalog) clone() *Catalog {
	cp := &Catalog{
		entries: c.Entries(),
		index:   make(map[string]int, len(c.index)),
	}
	for k, v := range c.index {
		cp.index[k] = v
	}
	return cp
}

// catalogFromEntries restores a catalog verbatim, markers included.
func catalogFromEntries(entries []Entry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if c.Add(e.Label) {
			c.entries[len(c.entries)-1].Status = e.Status
		}
	}
	return c
}
