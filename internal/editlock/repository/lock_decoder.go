package repository

import (
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/domain"
)

// DecodeEditLock turns the raw value of a whiteboard's lock field into a typed lock.
// present is false when the field is absent or null. A present value that is not
// a map, or that lacks a createdAt/expiresAt timestamp, yields ErrMalformedLock.
func DecodeEditLock(raw interface{}, present bool) (*domain.EditLock, bool, error) {
	if !present || raw == nil {
		return nil, false, nil
	}

	fields, ok := raw.(map[string]interface{})
	if !ok {
		return nil, true, fmt.Errorf("%w: expected a map, got %T", domain.ErrMalformedLock, raw)
	}

	lock := &domain.EditLock{}

	if v, ok := fields["userName"]; ok && v != nil {
		name, ok := v.(string)
		if !ok {
			return nil, true, fmt.Errorf("%w: userName is %T, not a string", domain.ErrMalformedLock, v)
		}
		lock.UserName = name
	}

	var err error
	if lock.CreatedAt, err = timestampField(fields, "createdAt"); err != nil {
		return nil, true, err
	}
	if lock.ExpiresAt, err = timestampField(fields, "expiresAt"); err != nil {
		return nil, true, err
	}

	return lock, true, nil
}

func timestampField(fields map[string]interface{}, name string) (time.Time, error) {
	v, ok := fields[name]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("%w: %s is missing", domain.ErrMalformedLock, name)
	}

	switch ts := v.(type) {
	case time.Time:
		return ts, nil
	case *time.Time:
		if ts == nil {
			return time.Time{}, fmt.Errorf("%w: %s is missing", domain.ErrMalformedLock, name)
		}
		return *ts, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s is %T, not a timestamp", domain.ErrMalformedLock, name, v)
	}
}
