package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEditLock_Expired(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	lock := EditLock{UserName: "Alice", CreatedAt: t0, ExpiresAt: t0.Add(5 * time.Minute)}

	assert.False(t, lock.Expired(t0))
	assert.False(t, lock.Expired(t0.Add(5*time.Minute)), "lock is live at exactly expiresAt")
	assert.True(t, lock.Expired(t0.Add(5*time.Minute+time.Nanosecond)))
	assert.True(t, lock.Expired(t0.Add(10*time.Minute)))
}

func TestWhiteboard_StateAt(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0.Add(10 * time.Minute)

	tests := []struct {
		name string
		wb   Whiteboard
		want LockState
	}{
		{"no lock", Whiteboard{ID: "w0"}, LockNone},
		{"live", Whiteboard{ID: "w1", Lock: &EditLock{ExpiresAt: t0.Add(30 * time.Minute)}}, LockLive},
		{"expired", Whiteboard{ID: "w2", Lock: &EditLock{ExpiresAt: t0.Add(5 * time.Minute)}}, LockExpired},
		{"malformed", Whiteboard{ID: "w3", LockErr: errors.New("bad")}, LockMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.wb.StateAt(now))
		})
	}
}

func TestSweepReport_Succeeded(t *testing.T) {
	r := &SweepReport{RunID: "r1"}
	assert.False(t, r.Succeeded())

	done := time.Now()
	r.FinishedAt = &done
	assert.True(t, r.Succeeded())

	r.Error = "boom"
	assert.False(t, r.Succeeded())
	assert.Equal(t, "boom", r.Summary().Error)
}
