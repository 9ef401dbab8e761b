package mealplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(Weekdays)
	require.NoError(t, err)

	s, err := reg.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	err = got.Do(func(p *Plan) error {
		return p.Assign("Monday", eggs(1))
	})
	require.NoError(t, err)

	err = s.Do(func(p *Plan) error {
		meals, err := p.ListDay("Monday")
		if err != nil {
			return err
		}
		assert.Len(t, meals, 1)
		return nil
	})
	require.NoError(t, err)

	other, err := reg.Create()
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)
	require.NoError(t, other.Do(func(p *Plan) error {
		meals, err := p.ListDay("Monday")
		assert.Empty(t, meals)
		return err
	}))

	reg.Delete(s.ID)
	_, err = reg.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryExpire(t *testing.T) {
	reg, err := NewRegistry(NumberedDays(7))
	require.NoError(t, err)

	_, err = reg.Create()
	require.NoError(t, err)
	_, err = reg.Create()
	require.NoError(t, err)

	assert.Equal(t, 0, reg.Expire(time.Hour))
	assert.Equal(t, 2, reg.Len())

	reg.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 2, reg.Expire(time.Hour))
	assert.Equal(t, 0, reg.Len())
}

func TestNewRegistryRejectsEmptyDays(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.ErrorIs(t, err, ErrNoDays)
}
