package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShortID_Valid(t *testing.T) {
	cases := []string{"ACME01", "SHOP02", "ABC1234", "ABCDEF01", "XYZ99"}
	for _, id := range cases {
		p := &Project{ShortID: id}
		assert.NoError(t, p.ValidateShortID(), "should accept %q", id)
	}
}

func TestValidateShortID_EmptyIsAllowed(t *testing.T) {
	p := &Project{ShortID: ""}
	assert.NoError(t, p.ValidateShortID())
}

func TestValidateShortID_Lowercase(t *testing.T) {
	p := &Project{ShortID: "acme01"}
	err := p.ValidateShortID()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uppercase")
}

func TestValidateShortID_TooShort(t *testing.T) {
	p := &Project{ShortID: "AB1"}
	err := p.ValidateShortID()
	require.Error(t, err)
}

func TestValidateShortID_NoDigits(t *testing.T) {
	p := &Project{ShortID: "WEBSITE"}
	err := p.ValidateShortID()
	require.Error(t, err)
}

func TestDisplayID_WithShortID(t *testing.T) {
	p := &Project{ID: "550e8400-e29b-41d4-a716-446655440000", ShortID: "ACME01"}
	assert.Equal(t, "ACME01", p.DisplayID())
}

func TestDisplayID_WithoutShortID(t *testing.T) {
	p := &Project{ID: "550e8400-e29b-41d4-a716-446655440000", ShortID: ""}
	assert.Equal(t, "550e8400", p.DisplayID())
}

func TestDisplayID_ShortUUID(t *testing.T) {
	p := &Project{ID: "abc", ShortID: ""}
	assert.Equal(t, "abc", p.DisplayID())
}

func TestAnchorDate_UsesStartDate(t *testing.T) {
	start := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	p := &Project{StartDate: &start}
	got := p.AnchorDate(time.Date(2030, 5, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestAnchorDate_FallsBackToToday(t *testing.T) {
	p := &Project{}
	now := time.Date(2025, 3, 9, 18, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), p.AnchorDate(now))
}

func TestPublished_PerCollection(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &Project{TimelinePublished: true, TimelineLastPublished: &at}
	assert.True(t, p.Published(CollectionTimeline))
	assert.False(t, p.Published(CollectionTesting))
	assert.Equal(t, &at, p.LastPublished(CollectionTimeline))
	assert.Nil(t, p.LastPublished(CollectionTesting))
}
