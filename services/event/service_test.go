package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-arch1tect/secretsanta/testutils"
)

func setupEventService(t *testing.T, now time.Time) *Service {
	db := testutils.SetupTestDB(t, &Event{})
	cfg := testutils.GetTestConfig()
	return NewServiceWithClock(cfg, db, nil, func() time.Time { return now })
}

func makeEvent(name string, preStart, regStart, regEnd time.Time) *Event {
	return &Event{
		Name:                 name,
		PreregistrationStart: preStart,
		RegistrationStart:    regStart,
		RegistrationEnd:      regEnd,
		IsActive:             true,
	}
}

func TestPhaseAt(t *testing.T) {
	base := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	e := makeEvent("winter", base, base.Add(48*time.Hour), base.Add(96*time.Hour))

	tests := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{"before preregistration", base.Add(-time.Second), PhaseNotYetOpen},
		{"preregistration opens inclusive", base, PhasePreregistration},
		{"mid preregistration", base.Add(24 * time.Hour), PhasePreregistration},
		{"registration opens inclusive", base.Add(48 * time.Hour), PhaseRegistration},
		{"just before registration end", base.Add(96*time.Hour - time.Second), PhaseRegistration},
		{"registration end is exclusive", base.Add(96 * time.Hour), PhaseClosed},
		{"long after", base.Add(200 * time.Hour), PhaseClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PhaseAt(e, tt.now))
		})
	}
}

func TestCreate_AllocatesIncreasingSequenceIDs(t *testing.T) {
	now := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	svc := setupEventService(t, now)

	first := makeEvent("first", now, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, svc.Create(first))
	assert.Equal(t, uint(1), first.SequenceID)

	second := makeEvent("second", now, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, svc.Create(second))
	assert.Equal(t, uint(2), second.SequenceID)

	// Deleting an event must not free its number for reuse.
	require.NoError(t, svc.Delete(second.ID))

	third := makeEvent("third", now, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, svc.Create(third))
	assert.Equal(t, uint(3), third.SequenceID)
}

func TestCreate_RejectsDisorderedWindows(t *testing.T) {
	now := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	svc := setupEventService(t, now)

	tests := []struct {
		name  string
		event *Event
	}{
		{"preregistration after registration", makeEvent("bad", now.Add(2*time.Hour), now.Add(time.Hour), now.Add(3*time.Hour))},
		{"registration start equals end", makeEvent("bad", now, now.Add(time.Hour), now.Add(time.Hour))},
		{"equal preregistration and registration start", makeEvent("bad", now, now, now.Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(tt.event)
			assert.ErrorIs(t, err, ErrInvalidWindows)
		})
	}
}

func TestUpdate_RevalidatesWindows(t *testing.T) {
	now := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	svc := setupEventService(t, now)

	e := makeEvent("winter", now, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, svc.Create(e))

	bad := makeEvent("winter", now.Add(3*time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))
	_, err := svc.Update(e.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidWindows)

	good := makeEvent("renamed", now, now.Add(2*time.Hour), now.Add(4*time.Hour))
	updated, err := svc.Update(e.ID, good)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, e.SequenceID, updated.SequenceID)
}

func TestCurrent_PicksEarliestOpenActiveEvent(t *testing.T) {
	now := time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC)
	svc := setupEventService(t, now)

	// Ended: registration_end in the past.
	ended := makeEvent("ended", now.Add(-96*time.Hour), now.Add(-72*time.Hour), now.Add(-time.Hour))
	require.NoError(t, svc.Create(ended))

	// Inactive but otherwise eligible.
	inactive := makeEvent("inactive", now.Add(-48*time.Hour), now.Add(-time.Hour), now.Add(48*time.Hour))
	inactive.IsActive = false
	require.NoError(t, svc.Create(inactive))

	later := makeEvent("later", now.Add(24*time.Hour), now.Add(48*time.Hour), now.Add(96*time.Hour))
	require.NoError(t, svc.Create(later))

	earlier := makeEvent("earlier", now.Add(-24*time.Hour), now.Add(time.Hour), now.Add(72*time.Hour))
	require.NoError(t, svc.Create(earlier))

	current, err := svc.Current()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "earlier", current.Name)
}

func TestCurrent_NoQualifyingEventIsNotAnError(t *testing.T) {
	now := time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC)
	svc := setupEventService(t, now)

	ended := makeEvent("ended", now.Add(-96*time.Hour), now.Add(-72*time.Hour), now.Add(-time.Hour))
	require.NoError(t, svc.Create(ended))

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestSetActive(t *testing.T) {
	now := time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC)
	svc := setupEventService(t, now)

	e := makeEvent("winter", now.Add(-time.Hour), now, now.Add(48*time.Hour))
	require.NoError(t, svc.Create(e))

	updated, err := svc.SetActive(e.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestFindByID_NotFound(t *testing.T) {
	svc := setupEventService(t, time.Now())
	_, err := svc.FindByID(999)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
