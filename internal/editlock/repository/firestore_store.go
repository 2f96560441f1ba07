package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/domain"
)

// FirestoreOptions names the collections and field the store reads
type FirestoreOptions struct {
	GroupsCollection      string
	WhiteboardsCollection string
	LockField             string
	PageSize              int
}

// FirestoreStore reads groups and whiteboards from Cloud Firestore and
// removes lock fields with targeted field deletes
type FirestoreStore struct {
	client *firestore.Client
	opts   FirestoreOptions
}

// NewFirestoreStore creates a new FirestoreStore
func NewFirestoreStore(client *firestore.Client, opts FirestoreOptions) *FirestoreStore {
	if opts.PageSize < 1 {
		opts.PageSize = 200
	}
	return &FirestoreStore{client: client, opts: opts}
}

// ListGroups returns every group ID, one page at a time, ordered by document ID
func (s *FirestoreStore) ListGroups(ctx context.Context) ([]domain.Group, error) {
	base := s.client.Collection(s.opts.GroupsCollection).
		Select().
		OrderBy(firestore.DocumentID, firestore.Asc)

	var groups []domain.Group
	err := s.paginate(ctx, base, func(doc *firestore.DocumentSnapshot) error {
		groups = append(groups, domain.Group{ID: doc.Ref.ID})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.opts.GroupsCollection, err)
	}

	return groups, nil
}

// ListWhiteboards returns the whiteboards of a group with their decoded lock.
// Only the lock field is fetched.
func (s *FirestoreStore) ListWhiteboards(ctx context.Context, groupID string) ([]domain.Whiteboard, error) {
	base := s.whiteboards(groupID).
		Select(s.opts.LockField).
		OrderBy(firestore.DocumentID, firestore.Asc)

	var boards []domain.Whiteboard
	err := s.paginate(ctx, base, func(doc *firestore.DocumentSnapshot) error {
		raw, present := doc.Data()[s.opts.LockField]
		lock, _, err := DecodeEditLock(raw, present)
		wb := domain.Whiteboard{ID: doc.Ref.ID, GroupID: groupID, Lock: lock}
		if err != nil {
			wb.LockErr = fmt.Errorf("%s: %w", doc.Ref.Path, err)
		}
		boards = append(boards, wb)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list whiteboards of group %s: %w", groupID, err)
	}

	return boards, nil
}

// DeleteLock removes only the lock field. A whiteboard that no longer exists
// is treated as already unlocked.
func (s *FirestoreStore) DeleteLock(ctx context.Context, groupID, whiteboardID string) error {
	ref := s.whiteboards(groupID).Doc(whiteboardID)

	_, err := ref.Update(ctx, []firestore.Update{
		{Path: s.opts.LockField, Value: firestore.Delete},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s on %s: %w", s.opts.LockField, ref.Path, classify(err))
	}

	return nil
}

func (s *FirestoreStore) whiteboards(groupID string) *firestore.CollectionRef {
	return s.client.Collection(s.opts.GroupsCollection).Doc(groupID).Collection(s.opts.WhiteboardsCollection)
}

func (s *FirestoreStore) paginate(ctx context.Context, base firestore.Query, fn func(*firestore.DocumentSnapshot) error) error {
	var last *firestore.DocumentSnapshot

	for {
		q := base.Limit(s.opts.PageSize)
		if last != nil {
			q = q.StartAfter(last)
		}

		n := 0
		it := q.Documents(ctx)
		for {
			doc, err := it.Next()
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				it.Stop()
				return classify(err)
			}
			if err := fn(doc); err != nil {
				it.Stop()
				return err
			}
			last = doc
			n++
		}
		it.Stop()

		if n < s.opts.PageSize {
			return nil
		}
	}
}

// classify marks connectivity and credential failures with ErrStoreUnavailable
func classify(err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	default:
		return err
	}
}
