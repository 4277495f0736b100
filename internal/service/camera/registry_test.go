package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("door")
	assert.ErrorIs(t, err, ErrCameraNotFound)

	first := newTestSession(t, bothLenses, nil, nil)
	assert.Nil(t, r.Add(first))

	got, err := r.Get("door")
	require.NoError(t, err)
	assert.Same(t, first, got)

	second := newTestSession(t, bothLenses, nil, nil)
	assert.Same(t, first, r.Add(second))

	// A stale session going away must not unregister its replacement.
	r.Remove(first)
	got, err = r.Get("door")
	require.NoError(t, err)
	assert.Same(t, second, got)

	r.Remove(second)
	assert.Empty(t, r.List())
}

func TestRegistry_ListIsSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"yard", "door", "garage"} {
		s := newTestSession(t, bothLenses, nil, nil)
		s.camera = name
		r.Add(s)
	}

	infos := r.List()
	require.Len(t, infos, 3)
	assert.Equal(t, "door", infos[0].Camera)
	assert.Equal(t, "garage", infos[1].Camera)
	assert.Equal(t, "yard", infos[2].Camera)

	r.CloseAll()
	assert.Empty(t, r.List())
}
