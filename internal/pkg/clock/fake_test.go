package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_AdvanceRunsDueTimersInOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := NewFake(start)

	var fired []string
	clk.AfterFunc(2*time.Second, func() { fired = append(fired, "two") })
	clk.AfterFunc(time.Second, func() { fired = append(fired, "one") })
	clk.AfterFunc(5*time.Second, func() { fired = append(fired, "five") })

	clk.Advance(2 * time.Second)

	assert.Equal(t, []string{"one", "two"}, fired)
	assert.Equal(t, start.Add(2*time.Second), clk.Now())
	assert.Equal(t, 1, clk.Pending())
}

func TestFake_StopPreventsCallback(t *testing.T) {
	clk := NewFake(time.Now())

	called := false
	timer := clk.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	clk.Advance(time.Minute)
	assert.False(t, called)
	assert.Zero(t, clk.Pending())
}

func TestFake_CallbackMayReschedule(t *testing.T) {
	clk := NewFake(time.Now())

	count := 0
	var tick func()
	tick = func() {
		count++
		clk.AfterFunc(time.Second, tick)
	}
	clk.AfterFunc(time.Second, tick)

	clk.Advance(time.Second)
	clk.Advance(time.Second)
	clk.Advance(time.Second)

	assert.Equal(t, 3, count)
	assert.Equal(t, 1, clk.Pending())
}
