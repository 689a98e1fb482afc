package service

import (
	"context"
	"iter"
	"log/slog"

	"messenger/internal/cache"
	"messenger/internal/models"
	"messenger/internal/observability"
	"messenger/internal/repository"
	"messenger/internal/validation"
)

// RelationshipService manages each user's contact and block lists.
type RelationshipService struct {
	users repository.UserRepository
	lists repository.RelationshipRepository
	cache *cache.Cache
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(users repository.UserRepository, lists repository.RelationshipRepository, c *cache.Cache) *RelationshipService {
	return &RelationshipService{users: users, lists: lists, cache: c}
}

func (s *RelationshipService) ownerList(ctx context.Context, kind models.ListKind, owner string) (uint, error) {
	user, err := s.users.GetByLogin(ctx, owner)
	if err != nil {
		return 0, err
	}
	return user.ListID(kind), nil
}

// AddToList puts target on owner's list of the given kind.
func (s *RelationshipService) AddToList(ctx context.Context, kind models.ListKind, owner, target string) (err error) {
	ctx, finish := observability.StartOperation(ctx, "relationship.add", owner)
	defer func() { finish(err) }()

	if err := validation.ValidateLogin(target); err != nil {
		return err
	}
	if owner == target {
		return models.NewSelfReferenceError(kind)
	}

	listID, err := s.ownerList(ctx, kind, owner)
	if err != nil {
		return err
	}
	exists, err := s.users.Exists(ctx, target)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", target)
	}

	if err := s.lists.AddMember(ctx, listID, target); err != nil {
		return err
	}
	if kind == models.ListKindBlock {
		s.cache.Invalidate(ctx, cache.BlockedSendersKey(owner))
	}
	slog.InfoContext(ctx, "relationship added", "kind", kind, "owner", owner, "target", target)
	return nil
}

// RemoveFromList drops target from owner's list. Removing a login that is not
// on the list succeeds.
func (s *RelationshipService) RemoveFromList(ctx context.Context, kind models.ListKind, owner, target string) (err error) {
	ctx, finish := observability.StartOperation(ctx, "relationship.remove", owner)
	defer func() { finish(err) }()

	listID, err := s.ownerList(ctx, kind, owner)
	if err != nil {
		return err
	}
	if err := s.lists.RemoveMember(ctx, listID, target); err != nil {
		return err
	}
	if kind == models.ListKindBlock {
		s.cache.Invalidate(ctx, cache.BlockedSendersKey(owner))
	}
	return nil
}

// ListMembers yields (login, status) for each member of owner's list in store
// order. The sequence reads lazily from the store.
func (s *RelationshipService) ListMembers(ctx context.Context, kind models.ListKind, owner string) (iter.Seq2[models.ListMember, error], error) {
	listID, err := s.ownerList(ctx, kind, owner)
	if err != nil {
		return nil, err
	}
	return s.lists.ListMembers(ctx, listID), nil
}

// CollectMembers drains ListMembers into a slice.
func (s *RelationshipService) CollectMembers(ctx context.Context, kind models.ListKind, owner string) ([]models.ListMember, error) {
	seq, err := s.ListMembers(ctx, kind, owner)
	if err != nil {
		return nil, err
	}
	members := []models.ListMember{}
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}
