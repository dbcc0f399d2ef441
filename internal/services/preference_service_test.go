package services

import (
	"testing"

	"edunion/internal/database/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsWithoutMaterializing(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPreferenceService(db)

	user := seedUser(t, db, "Asha", "asha@example.com")

	prefs, err := svc.Resolve(user.ID)
	require.NoError(t, err)
	assert.True(t, prefs.NotifyOnNewEvent)
	assert.True(t, prefs.NotifyOnReminder)
	assert.True(t, prefs.EmailEnabled)

	// Resolve is the delivery path: it must never create a row
	assert.EqualValues(t, 0, countPreferenceRows(t, db))
}

func TestGetMaterializesDefaultRow(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPreferenceService(db)

	user := seedUser(t, db, "Asha", "asha@example.com")

	prefs, err := svc.Get(user.ID)
	require.NoError(t, err)
	assert.True(t, prefs.NotifyOnNewEvent)
	assert.EqualValues(t, 1, countPreferenceRows(t, db))

	// Second read returns the same row, not another default
	again, err := svc.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, prefs.ID, again.ID)
	assert.EqualValues(t, 1, countPreferenceRows(t, db))
}

func TestUpdatePersistsFlags(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPreferenceService(db)

	user := seedUser(t, db, "Asha", "asha@example.com")

	updated, err := svc.Update(user.ID, false, true, false)
	require.NoError(t, err)
	assert.False(t, updated.NotifyOnNewEvent)
	assert.True(t, updated.NotifyOnReminder)
	assert.False(t, updated.EmailEnabled)

	// The delivery path now sees the stored flags, not the defaults
	resolved, err := svc.Resolve(user.ID)
	require.NoError(t, err)
	assert.False(t, resolved.NotifyOnNewEvent)
	assert.True(t, resolved.NotifyOnReminder)
	assert.False(t, resolved.EmailEnabled)
}
