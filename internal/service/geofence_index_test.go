package service

import (
	"testing"

	"sentra/internal/domain"
	"sentra/internal/repository"
	"sentra/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsInvalidPolygons(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db)
	index := NewGeofenceIndex(repository.NewGeofenceRepository(db), testLogger())

	_, err := index.Register(org.ID, 1, "too-few", geo.Polygon{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidPolygon)

	bowtie := geo.Polygon{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}, {Lat: 10, Lng: 0}, {Lat: 0, Lng: 10}}
	_, err = index.Register(org.ID, 1, "bowtie", bowtie)
	assert.ErrorIs(t, err, domain.ErrInvalidPolygon)
}

func TestContainsMatchesActiveFences(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db)
	index := NewGeofenceIndex(repository.NewGeofenceRepository(db), testLogger())

	fence, err := index.Register(org.ID, 1, "campus", unitSquare())
	require.NoError(t, err)

	matches, err := index.Contains(org.ID, geo.Point{Lat: 5, Lng: 5})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, fence.ID, matches[0].ID)

	matches, err = index.Contains(org.ID, geo.Point{Lat: 50, Lng: 50})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestContainsScopedToOrganization(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db)
	index := NewGeofenceIndex(repository.NewGeofenceRepository(db), testLogger())

	_, err := index.Register(org.ID, 1, "campus", unitSquare())
	require.NoError(t, err)

	matches, err := index.Contains(org.ID+1, geo.Point{Lat: 5, Lng: 5})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestContainsOrderedBySmallestID(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db)
	index := NewGeofenceIndex(repository.NewGeofenceRepository(db), testLogger())

	first, err := index.Register(org.ID, 1, "outer", unitSquare())
	require.NoError(t, err)
	inner := geo.Polygon{{Lat: 2, Lng: 2}, {Lat: 2, Lng: 8}, {Lat: 8, Lng: 8}, {Lat: 8, Lng: 2}}
	_, err = index.Register(org.ID, 1, "inner", inner)
	require.NoError(t, err)

	matches, err := index.Contains(org.ID, geo.Point{Lat: 5, Lng: 5})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, first.ID, matches[0].ID)
}

func TestDeactivateIsIdempotentAndExcludesFromRouting(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db)
	index := NewGeofenceIndex(repository.NewGeofenceRepository(db), testLogger())

	fence, err := index.Register(org.ID, 1, "campus", unitSquare())
	require.NoError(t, err)

	require.NoError(t, index.Deactivate(fence.ID))
	require.NoError(t, index.Deactivate(fence.ID)) // second call is a no-op

	matches, err := index.Contains(org.ID, geo.Point{Lat: 5, Lng: 5})
	require.NoError(t, err)
	assert.Empty(t, matches)
}
