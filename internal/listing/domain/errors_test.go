package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForbiddenErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("update: %w", &ForbiddenError{ListingID: "l1", OwnerID: "u1", ActorID: "u2", ActorRole: RoleAgent})

	assert.ErrorIs(t, err, ErrForbidden)
	var fe *ForbiddenError
	assert.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "u2")
	assert.NotContains(t, fe.PublicMessage(), "u1")
}

func TestInfrastructureErrorsKeepCause(t *testing.T) {
	cause := errors.New("connection reset")

	dbErr := NewDatabaseError("find listing", cause)
	assert.ErrorIs(t, dbErr, ErrDatabase)
	assert.ErrorIs(t, dbErr, cause)

	stErr := NewStorageError("put object", cause)
	assert.ErrorIs(t, stErr, ErrStorage)
	assert.ErrorIs(t, stErr, cause)
	assert.NotErrorIs(t, stErr, ErrDatabase)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("rent", "must not be negative")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: rent must not be negative", err.Error())
}

func TestListingCloneIsDeep(t *testing.T) {
	orig := &Listing{
		ID:        "l1",
		Amenities: []string{"pool"},
		Images:    []ListingImage{{ID: "i1"}},
		Location:  Location{Geo: &GeoPoint{Lat: 6.5, Lng: 3.4}},
	}
	c := orig.Clone()
	c.Amenities[0] = "gym"
	c.Images[0].ID = "i2"
	c.Location.Geo.Lat = 0

	assert.Equal(t, "pool", orig.Amenities[0])
	assert.Equal(t, "i1", orig.Images[0].ID)
	assert.Equal(t, 6.5, orig.Location.Geo.Lat)
}

func TestPrincipalRoles(t *testing.T) {
	assert.True(t, SystemPrincipal("reaper").IsElevated())
	assert.True(t, Principal{ID: "a", Role: RoleAdmin}.IsElevated())
	assert.False(t, Principal{ID: "o", Role: RoleOwner}.IsElevated())
	assert.True(t, RoleAgent.IsLister())
	assert.False(t, RoleAdmin.IsLister())
}
