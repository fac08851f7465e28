package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimedExecutor(t *testing.T) {

	var executions int
	executor := CreateTimedExecutor(time.Hour, func() { executions++ })

	// A fresh executor fires on the first call, then waits out its timeout
	executor.Execute()
	executor.Execute()
	executor.Execute()
	assert.Equal(t, 1, executions)
}

func TestStopwatch(t *testing.T) {

	stopwatch := CreateStopwatch(50 * time.Millisecond)
	assert.True(t, stopwatch.Stopped())

	stopwatch.Start()
	assert.False(t, stopwatch.Stopped())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, stopwatch.Stopped())
}
