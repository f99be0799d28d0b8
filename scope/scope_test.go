package scope

import (
	"testing"

	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAsset struct {
	resource.Base
}

func (*stubAsset) OnCreate(resource.Host) error { return nil }
func (*stubAsset) OnDelete(resource.Host)       {}

func newStub(raw string) *stubAsset {
	a := &stubAsset{}
	a.Init(address.Parse(raw), resource.Managed)
	a.SetStatus(resource.StatusQueued)
	return a
}

func TestScope_ReadyOnlyAfterAllDependenciesComplete(t *testing.T) {
	parent := newStub("pkg://a.bundle")
	b := newStub("pkg://b.png")
	c := newStub("pkg://c.wav")

	s := New(parent)
	require.NoError(t, s.Mark(b))
	require.NoError(t, s.Mark(c))
	assert.False(t, s.Poll())

	b.SetStatus(resource.StatusCompleted)
	assert.False(t, s.Poll())
	assert.Equal(t, 1, s.Pending())

	c.SetStatus(resource.StatusCompleted)
	assert.True(t, s.Poll())
	assert.Zero(t, s.Pending())
}

func TestScope_PollIsIdempotent(t *testing.T) {
	parent := newStub("pkg://a.bundle")
	dep := newStub("pkg://b.png")

	s := New(parent)
	require.NoError(t, s.Mark(dep))
	dep.SetStatus(resource.StatusCompleted)

	for i := 0; i < 5; i++ {
		assert.True(t, s.Poll())
	}
	// Completed dependencies are gone for good, even if reset later.
	dep.Reset()
	assert.True(t, s.Poll())
}

func TestScope_EmptyScopeIsReady(t *testing.T) {
	s := New(newStub("pkg://a.png"))
	assert.True(t, s.Poll())
}

func TestScope_References(t *testing.T) {
	parent := newStub("pkg://a.bundle")
	b := newStub("pkg://b.png")
	c := newStub("pkg://c.png")

	s := New(parent)
	assert.True(t, parent.Tracked())

	require.NoError(t, s.Mark(b))
	require.NoError(t, s.Mark(c))
	assert.True(t, b.Tracked())

	b.SetStatus(resource.StatusCompleted)
	s.Poll()
	assert.False(t, b.Tracked(), "completed dependency is released by poll")
	assert.True(t, c.Tracked())

	s.Close()
	s.Close()
	assert.False(t, c.Tracked())
	assert.False(t, parent.Tracked())
	assert.ErrorIs(t, s.Mark(b), ErrClosed)
}

func TestScope_Failed(t *testing.T) {
	s := New(newStub("pkg://a.bundle"))
	dep := newStub("pkg://missing.png")
	require.NoError(t, s.Mark(dep))

	_, failed := s.Failed()
	assert.False(t, failed)

	dep.SetStatus(resource.StatusFailed)
	failedDep, failed := s.Failed()
	assert.True(t, failed)
	assert.Equal(t, "pkg://missing.png", failedDep.Resource().Address().String())
	assert.False(t, s.Poll(), "failed dependencies stay pending")
}

func TestScope_Capacity(t *testing.T) {
	s := New(newStub("pkg://a.bundle"))
	for i := 0; i < MaxDependencies; i++ {
		require.NoError(t, s.Mark(newStub("pkg://dep.png")))
	}
	assert.ErrorIs(t, s.Mark(newStub("pkg://one-too-many.png")), ErrTooManyDependencies)
}
