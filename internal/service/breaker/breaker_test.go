package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestTripsAfterConsecutiveFailures(t *testing.T) {
	m := New(Config{ConsecutiveFailures: 2, Timeout: time.Minute})
	fail := func() (interface{}, error) { return nil, errors.New("down") }

	var transitions []gobreaker.State
	m.OnStateChange(func(_ string, _, to gobreaker.State) { transitions = append(transitions, to) })

	_, err := m.Execute("api.example", fail)
	assert.Error(t, err)
	_, err = m.Execute("api.example", fail)
	assert.Error(t, err)
	assert.Equal(t, gobreaker.StateOpen, m.State("api.example"))
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)

	called := false
	_, err = m.Execute("api.example", func() (interface{}, error) { called = true; return nil, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)

	assert.Equal(t, gobreaker.StateClosed, m.State("other"))
}

func TestIsSuccessfulExcludesErrors(t *testing.T) {
	notFound := errors.New("not found")
	m := New(Config{
		ConsecutiveFailures: 1,
		IsSuccessful:        func(err error) bool { return err == nil || errors.Is(err, notFound) },
	})

	for i := 0; i < 3; i++ {
		_, err := m.Execute("api.example", func() (interface{}, error) { return nil, notFound })
		assert.ErrorIs(t, err, notFound)
	}
	assert.Equal(t, gobreaker.StateClosed, m.State("api.example"))
}
