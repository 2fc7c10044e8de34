package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionSupersede(t *testing.T) {
	r := NewSessionRegistry()

	ctx1, first := r.Begin(context.Background(), "s-1")
	ctx2, second := r.Begin(context.Background(), "s-1")

	assert.True(t, first.Superseded())
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.False(t, second.Superseded())
	assert.NoError(t, ctx2.Err())
	assert.Equal(t, 1, r.Active())

	// ending the older search must not forget the newer one
	r.End(first)
	assert.Equal(t, 1, r.Active())

	r.End(second)
	assert.Equal(t, 0, r.Active())
	assert.Error(t, ctx2.Err())
}

func TestSessionsAreIndependent(t *testing.T) {
	r := NewSessionRegistry()

	_, a := r.Begin(context.Background(), "a")
	_, b := r.Begin(context.Background(), "b")
	assert.False(t, a.Superseded())
	assert.False(t, b.Superseded())
	assert.Equal(t, 2, r.Active())
}

func TestSessionWithoutID(t *testing.T) {
	r := NewSessionRegistry()

	ctx1, first := r.Begin(context.Background(), "")
	_, second := r.Begin(context.Background(), "")

	assert.False(t, first.Superseded())
	assert.NoError(t, ctx1.Err())
	assert.Equal(t, 0, r.Active())

	r.End(first)
	r.End(second)
	assert.Error(t, ctx1.Err())
}
