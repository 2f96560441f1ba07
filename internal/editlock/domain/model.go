package domain

import "time"

// Group is a shared group document; only its ID is read
type Group struct {
	ID string `json:"id"`
}

// Whiteboard is a whiteboard document inside a group's sub-collection.
// Lock is nil when the document carries no lock. LockErr is set when the
// lock field is present but could not be decoded.
type Whiteboard struct {
	ID      string    `json:"id"`
	GroupID string    `json:"group_id"`
	Lock    *EditLock `json:"edit_lock,omitempty"`
	LockErr error     `json:"-"`
}

// EditLock records who holds a whiteboard and until when
type EditLock struct {
	UserName  string    `json:"user_name" firestore:"userName"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt"`
}

// Expired reports whether the lock has passed its expiry at now.
// A lock is still live at exactly ExpiresAt.
func (l EditLock) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// LockState classifies a whiteboard's lock during a sweep
type LockState string

const (
	LockNone      LockState = "none"
	LockLive      LockState = "live"
	LockExpired   LockState = "expired"
	LockMalformed LockState = "malformed"
)

// StateAt classifies the whiteboard's lock at now
func (w Whiteboard) StateAt(now time.Time) LockState {
	switch {
	case w.LockErr != nil:
		return LockMalformed
	case w.Lock == nil:
		return LockNone
	case w.Lock.Expired(now):
		return LockExpired
	default:
		return LockLive
	}
}
