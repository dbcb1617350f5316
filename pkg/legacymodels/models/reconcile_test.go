package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// applyChanges replays a change set over a row slice the way the data tables
// would, assigning fresh ids to inserts.
func applyChanges(rows []DataRow, changes ChangeSet, nextID int64) []DataRow {
	byID := make(map[int64]DataRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	for _, row := range changes.Updates {
		byID[row.ID] = row
	}
	for _, row := range changes.Deletes {
		delete(byID, row.ID)
	}
	for _, row := range changes.Inserts {
		row.ID = nextID
		nextID++
		byID[row.ID] = row
	}
	out := make([]DataRow, 0, len(byID))
	for _, row := range byID {
		out = append(out, row)
	}
	return out
}

func TestReconcileEmptyOverlayAndRows(t *testing.T) {
	overlay := NewDataCollection()
	require.True(t, Reconcile(overlay, nil).Empty())
}

func TestReconcileNilOverlayChangesNothing(t *testing.T) {
	persisted := []DataRow{
		{ID: 1, Key: "email", Value: "a@x.com"},
		{ID: 2, Key: "phone", Value: "555"},
	}

	// nil means the overlay was never loaded, not that it is empty
	require.True(t, Reconcile(nil, persisted).Empty())

	// an empty loaded overlay, by contrast, clears the rows
	changes := Reconcile(NewDataCollection(), persisted)
	require.Len(t, changes.Deletes, 2)
}

func TestReconcileInsertsNewKeys(t *testing.T) {
	overlay := NewDataCollection()
	overlay.Set("email", "a@x.com")

	changes := Reconcile(overlay, nil)

	require.Len(t, changes.Inserts, 1)
	require.Equal(t, "email", changes.Inserts[0].Key)
	require.Equal(t, "a@x.com", changes.Inserts[0].Value)
	require.Empty(t, changes.Updates)
	require.Empty(t, changes.Deletes)
}

func TestReconcileSecondSaveAddsOnlyNewKey(t *testing.T) {
	overlay := NewDataCollection()
	overlay.Set("email", "a@x.com")
	overlay.Set("phone", "555")

	persisted := []DataRow{{ID: 1, Key: "email", Value: "a@x.com"}}
	changes := Reconcile(overlay, persisted)

	require.Len(t, changes.Inserts, 1)
	require.Equal(t, "phone", changes.Inserts[0].Key)
	require.Empty(t, changes.Updates)
	require.Empty(t, changes.Deletes)
}

func TestReconcileUpdateKeepsStoredKeyCasing(t *testing.T) {
	overlay := NewDataCollection()
	overlay.Set("email", "new@x.com")

	persisted := []DataRow{{ID: 4, Key: "Email", Value: "old@x.com"}}
	changes := Reconcile(overlay, persisted)

	require.Empty(t, changes.Inserts)
	require.Empty(t, changes.Deletes)
	require.Len(t, changes.Updates, 1)
	require.Equal(t, int64(4), changes.Updates[0].ID)
	require.Equal(t, "Email", changes.Updates[0].Key)
	require.Equal(t, "new@x.com", changes.Updates[0].Value)
}

func TestReconcileEqualValueIsNoop(t *testing.T) {
	overlay := NewDataCollection()
	overlay.Set("email", "a@x.com")

	persisted := []DataRow{{ID: 1, Key: "EMAIL", Value: "a@x.com"}}
	require.True(t, Reconcile(overlay, persisted).Empty())
}

func TestReconcileNullLeavesStoredRowUntouched(t *testing.T) {
	overlay := NewDataCollection()
	overlay.SetNull("email")

	persisted := []DataRow{{ID: 1, Key: "email", Value: "a@x.com"}}
	require.True(t, Reconcile(overlay, persisted).Empty())
}

func TestReconcileNullIsNeverMaterialized(t *testing.T) {
	overlay := NewDataCollection()
	overlay.SetNull("phone")

	require.True(t, Reconcile(overlay, nil).Empty())
}

func TestReconcileMissingKeysDelete(t *testing.T) {
	overlay := NewDataCollection()
	overlay.Set("email", "a@x.com")

	persisted := []DataRow{
		{ID: 1, Key: "email", Value: "a@x.com"},
		{ID: 2, Key: "phone", Value: "555"},
		{ID: 3, Key: "city", Value: "Harare"},
	}
	changes := Reconcile(overlay, persisted)

	require.Empty(t, changes.Inserts)
	require.Empty(t, changes.Updates)
	require.Len(t, changes.Deletes, 2)
	require.Equal(t, int64(2), changes.Deletes[0].ID)
	require.Equal(t, int64(3), changes.Deletes[1].ID)
}

func TestReconcileMixedAndIdempotent(t *testing.T) {
	overlay := NewDataCollection()
	overlay.Set("email", "new@x.com")
	overlay.Set("Phone", "555")
	overlay.SetNull("nickname")

	persisted := []DataRow{
		{ID: 1, Key: "Email", Value: "old@x.com"},
		{ID: 2, Key: "city", Value: "Harare"},
		{ID: 3, Key: "nickname", Value: "al"},
	}

	changes := Reconcile(overlay, persisted)
	require.Len(t, changes.Inserts, 1)
	require.Equal(t, "Phone", changes.Inserts[0].Key)
	require.Len(t, changes.Updates, 1)
	require.Equal(t, "Email", changes.Updates[0].Key)
	require.Len(t, changes.Deletes, 1)
	require.Equal(t, int64(2), changes.Deletes[0].ID)

	applied := applyChanges(persisted, changes, 100)
	require.True(t, Reconcile(overlay, applied).Empty(), "second run must be a no-op")
}
