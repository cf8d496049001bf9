package logic

import (
	"testing"

	"github.com/petethec/obsidian-order/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfile(t *testing.T) {
	db := newTestDB(t)
	l := NewProfileLogic(db)

	profile := &model.ProfileModel{Username: "alice"}
	require.NoError(t, l.CreateProfile(profile))
	assert.Equal(t, "user", profile.Role)

	fetched, err := l.GetProfile(profile.Id)
	require.NoError(t, err)
	assert.Equal(t, "alice", fetched.Username)
}

func TestCreateProfileValidation(t *testing.T) {
	db := newTestDB(t)
	l := NewProfileLogic(db)

	var validationErr *ValidationError
	err := l.CreateProfile(&model.ProfileModel{Username: ""})
	require.ErrorAs(t, err, &validationErr)

	err = l.CreateProfile(&model.ProfileModel{Username: "bob", Role: "superuser"})
	require.ErrorAs(t, err, &validationErr)
}

func TestGetProfileNotFound(t *testing.T) {
	db := newTestDB(t)
	l := NewProfileLogic(db)

	_, err := l.GetProfile(404)
	assert.ErrorIs(t, err, ErrNotFound)
}
