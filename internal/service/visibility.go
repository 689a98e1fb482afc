package service

import (
	"context"

	"messenger/internal/cache"
	"messenger/internal/observability"
	"messenger/internal/repository"
)

// VisibilityFilter computes which senders a viewer must not see.
type VisibilityFilter struct {
	users repository.UserRepository
	lists repository.RelationshipRepository
	cache *cache.Cache
}

// NewVisibilityFilter returns a new VisibilityFilter.
func NewVisibilityFilter(users repository.UserRepository, lists repository.RelationshipRepository, c *cache.Cache) *VisibilityFilter {
	return &VisibilityFilter{users: users, lists: lists, cache: c}
}

// ExclusionSet returns the logins on viewer's block list. The set is
// evaluated on every read so un-blocking takes effect on the next fetch.
func (f *VisibilityFilter) ExclusionSet(ctx context.Context, viewer string) ([]string, error) {
	blocked := []string{}
	hit, err := f.cache.Aside(ctx, cache.BlockedSendersKey(viewer), &blocked, cache.BlockedSendersTTL, func() error {
		user, err := f.users.GetByLogin(ctx, viewer)
		if err != nil {
			return err
		}
		logins, err := f.lists.MemberLogins(ctx, user.BlockListID)
		if err != nil {
			return err
		}
		if logins != nil {
			blocked = logins
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case !f.cache.Enabled():
		observability.VisibilityCacheLookups.WithLabelValues("bypass").Inc()
	case hit:
		observability.VisibilityCacheLookups.WithLabelValues("hit").Inc()
	default:
		observability.VisibilityCacheLookups.WithLabelValues("miss").Inc()
	}
	return blocked, nil
}
