package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/domain"
)

// MemoryStore keeps groups and whiteboard documents in memory. Documents are
// plain field maps so callers can check that only the lock field changes.
type MemoryStore struct {
	mu        sync.RWMutex
	lockField string
	groups    map[string]map[string]map[string]interface{}
	deletes   int

	// Err, when set, is returned by every call before touching any data
	Err error
}

// NewMemoryStore creates an empty store keyed on lockField
func NewMemoryStore(lockField string) *MemoryStore {
	return &MemoryStore{
		lockField: lockField,
		groups:    make(map[string]map[string]map[string]interface{}),
	}
}

// PutGroup creates a group with no whiteboards if it does not exist
func (s *MemoryStore) PutGroup(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		s.groups[groupID] = make(map[string]map[string]interface{})
	}
}

// PutWhiteboard stores a copy of fields as the whiteboard document
func (s *MemoryStore) PutWhiteboard(groupID, whiteboardID string, fields map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	boards, ok := s.groups[groupID]
	if !ok {
		boards = make(map[string]map[string]interface{})
		s.groups[groupID] = boards
	}
	boards[whiteboardID] = copyFields(fields)
}

// Document returns a copy of the whiteboard document
func (s *MemoryStore) Document(groupID, whiteboardID string) (map[string]interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.groups[groupID][whiteboardID]
	if !ok {
		return nil, false
	}
	return copyFields(doc), true
}

// RemoveWhiteboard deletes the whole document
func (s *MemoryStore) RemoveWhiteboard(groupID, whiteboardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.groups[groupID], whiteboardID)
}

// Deletes returns how many lock deletes reached the store
func (s *MemoryStore) Deletes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deletes
}

func (s *MemoryStore) ListGroups(ctx context.Context) ([]domain.Group, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]domain.Group, 0, len(s.groups))
	for id := range s.groups {
		groups = append(groups, domain.Group{ID: id})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })

	return groups, nil
}

func (s *MemoryStore) ListWhiteboards(ctx context.Context, groupID string) ([]domain.Whiteboard, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	boards := make([]domain.Whiteboard, 0, len(s.groups[groupID]))
	for id, doc := range s.groups[groupID] {
		raw, present := doc[s.lockField]
		lock, _, err := DecodeEditLock(raw, present)
		wb := domain.Whiteboard{ID: id, GroupID: groupID, Lock: lock}
		if err != nil {
			wb.LockErr = fmt.Errorf("%s/%s: %w", groupID, id, err)
		}
		boards = append(boards, wb)
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })

	return boards, nil
}

// DeleteLock removes the lock field; a missing document or field is a no-op
func (s *MemoryStore) DeleteLock(ctx context.Context, groupID, whiteboardID string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes++
	if doc, ok := s.groups[groupID][whiteboardID]; ok {
		delete(doc, s.lockField)
	}
	return nil
}

func (s *MemoryStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Err != nil {
		return s.Err
	}
	return nil
}

func copyFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
