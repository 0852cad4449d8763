package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/pkg/logger"
)

type fakeChecker struct {
	calls atomic.Int32
	err   error
}

func (f *fakeChecker) CheckLowStock(context.Context) (int, error) {
	f.calls.Add(1)
	return 2, f.err
}

func TestScheduler_ProgramaYEjecuta(t *testing.T) {
	s, err := New("UTC", logger.Nop())
	require.NoError(t, err)
	checker := &fakeChecker{}
	require.NoError(t, s.EveryLowStock(time.Second, checker))
	assert.Equal(t, 1, s.Jobs())

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return checker.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestScheduler_IntervaloCeroDesactiva(t *testing.T) {
	s, err := New("", logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.EveryLowStock(0, &fakeChecker{}))
	assert.Equal(t, 0, s.Jobs())
}

func TestScheduler_ZonaInvalida(t *testing.T) {
	_, err := New("Marte/Olympus", logger.Nop())
	assert.Error(t, err)
}

func TestScheduler_ErrorNoDetiene(t *testing.T) {
	s, err := New("UTC", logger.Nop())
	require.NoError(t, err)
	checker := &fakeChecker{err: errors.New("db caída")}
	s.runLowStock(checker)
	assert.Equal(t, int32(1), checker.calls.Load())
}
