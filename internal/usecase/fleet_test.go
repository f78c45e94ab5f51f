package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"StorkPull/internal/domain/models"
	applogger "StorkPull/pkg/logger"
)

func TestFleetStartStop(t *testing.T) {
	ok := newTestSupervisor(&fakeOracle{}, &fakeAuth{}, newFakeStore(), WithInterval(time.Hour))
	reset := newTestSupervisor(&fakeOracle{}, &fakeAuth{
		authErr: &models.AuthError{Username: testKey, Reset: true, Err: errors.New("reset")},
	}, newFakeStore(), WithInterval(time.Hour))

	f := NewFleet(applogger.Nop(), ok, reset)
	assert.Equal(t, f.Len(), 2)

	f.StartAll(context.Background())
	st := f.Statuses()
	assert.Equal(t, len(st), 2)
	assert.Equal(t, st[0].Running, true)
	assert.Equal(t, st[1].Running, false)
	assert.Equal(t, st[1].State, string(StateResetRequired))

	f.StopAll()
	assert.Equal(t, f.Statuses()[0].Running, false)
}
