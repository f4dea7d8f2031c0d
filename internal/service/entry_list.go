package service

import (
	"errors"
	"fmt"

	"github.com/ddi-checker/internal/domain"
)

// initialEntries is the number of empty rows a fresh list starts with.
const initialEntries = 2

// ErrEntryNotFound is returned when an entry id is not part of the list.
var ErrEntryNotFound = errors.New("drug entry not found")

// EntryList is the ordered, editable list of drug entries. At least one entry
// always remains addressable.
type EntryList struct {
	entries []domain.DrugEntry
}

// NewEntryList creates a list holding two empty entries
func NewEntryList() *EntryList {
	l := &EntryList{}
	for i := 0; i < initialEntries; i++ {
		l.Append()
	}
	return l
}

// Append adds an entry and returns its id. Without a prefill the entry carries
// the list defaults; otherwise the prefill is copied, with an empty unit or
// route falling back to the default.
func (l *EntryList) Append(prefill ...domain.DrugEntry) domain.EntryID {
	entry := domain.NewDrugEntry()
	if len(prefill) > 0 {
		overlay(&entry, prefill[0])
	}
	l.entries = append(l.entries, entry)
	return entry.ID
}

// Set replaces the content of the entry at position i with prefill. The entry
// keeps its id.
func (l *EntryList) Set(i int, prefill domain.DrugEntry) error {
	if i < 0 || i >= len(l.entries) {
		return fmt.Errorf("entry %d out of range [1,%d]", i+1, len(l.entries))
	}
	entry := domain.NewDrugEntry()
	entry.ID = l.entries[i].ID
	overlay(&entry, prefill)
	l.entries[i] = entry
	return nil
}

// overlay copies p onto a default entry. A frequency of zero is kept; only a
// negative one keeps the default.
func overlay(entry *domain.DrugEntry, p domain.DrugEntry) {
	p = p.Clone()
	entry.Name = p.Name
	entry.Dose = p.Dose
	if p.Freq >= 0 {
		entry.Freq = p.Freq
	}
	if p.Unit != "" {
		entry.Unit = p.Unit
	}
	if p.Route != "" {
		entry.Route = p.Route
	}
}

// RemoveLast drops the last entry. It is a no-op returning false when fewer
// than two entries remain.
func (l *EntryList) RemoveLast() bool {
	if len(l.entries) < 2 {
		return false
	}
	l.entries = l.entries[:len(l.entries)-1]
	return true
}

// Len returns the number of entries, named or not.
func (l *EntryList) Len() int {
	return len(l.entries)
}

// ShowHeadings reports whether column headings should be shown.
func (l *EntryList) ShowHeadings() bool {
	return len(l.entries) > 0
}

// At returns a copy of the entry at position i.
func (l *EntryList) At(i int) (domain.DrugEntry, error) {
	if i < 0 || i >= len(l.entries) {
		return domain.DrugEntry{}, fmt.Errorf("entry %d out of range [1,%d]", i+1, len(l.entries))
	}
	return l.entries[i].Clone(), nil
}

// Entries returns copies of every entry, including unnamed ones.
func (l *EntryList) Entries() []domain.DrugEntry {
	out := make([]domain.DrugEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Clone()
	}
	return out
}

// Update applies fn to the entry with the given id in place.
func (l *EntryList) Update(id domain.EntryID, fn func(*domain.DrugEntry)) error {
	for i := range l.entries {
		if l.entries[i].ID == id {
			fn(&l.entries[i])
			l.entries[i].ID = id
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// Snapshot returns deep copies of the entries whose trimmed name is non-empty,
// with names trimmed. Later edits to the list never reach a snapshot.
func (l *EntryList) Snapshot() []domain.DrugEntry {
	out := make([]domain.DrugEntry, 0, len(l.entries))
	for _, e := range l.entries {
		name := e.TrimmedName()
		if name == "" {
			continue
		}
		c := e.Clone()
		c.Name = name
		out = append(out, c)
	}
	return out
}
