package models

import (
	"sort"
	"strings"
)

// DataRow is one persisted extra-attribute row from an auxiliary data table.
type DataRow struct {
	ID    int64
	Key   string
	Value string
}

// ChangeSet is the minimal batch of row operations that makes the persisted
// rows match an overlay. It must be applied atomically per entity.
type ChangeSet struct {
	Inserts []DataRow
	Updates []DataRow
	Deletes []DataRow
}

func (c ChangeSet) Empty() bool {
	return len(c.Inserts) == 0 && len(c.Updates) == 0 && len(c.Deletes) == 0
}

// Reconcile diffs the overlay against the persisted rows of one entity.
//
// A nil overlay means "never loaded" and yields no changes; only an empty
// loaded overlay deletes everything. Keys compare case-insensitively. Updates
// keep the stored row's key casing, inserts keep the overlay's casing. An
// entry with an explicit null value leaves any stored row untouched; a key
// missing from the overlay deletes its row. Re-running Reconcile over the
// applied result yields an empty set.
func Reconcile(overlay *DataCollection, persisted []DataRow) ChangeSet {
	if overlay == nil {
		return ChangeSet{}
	}

	current := make(map[string]DataRow, len(persisted))
	for _, row := range persisted {
		current[strings.ToLower(row.Key)] = row
	}

	var changes ChangeSet
	for _, entry := range overlay.Entries() {
		key := strings.ToLower(entry.Name)
		row, ok := current[key]
		if ok {
			delete(current, key)
		}
		if !entry.Value.Valid {
			continue
		}
		if !ok {
			changes.Inserts = append(changes.Inserts, DataRow{Key: entry.Name, Value: entry.Value.String})
			continue
		}
		if row.Value == entry.Value.String {
			continue
		}
		row.Value = entry.Value.String
		changes.Updates = append(changes.Updates, row)
	}

	for _, row := range current {
		changes.Deletes = append(changes.Deletes, row)
	}
	sort.Slice(changes.Deletes, func(i, j int) bool {
		return changes.Deletes[i].ID < changes.Deletes[j].ID
	})
	return changes
}
