package memory

import (
	"context"
	"sort"

	"eventsphere/internal/domain"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.userByEmail[u.Email]; taken {
		return domain.ErrDuplicateEmail
	}
	u.ID = r.s.newID()
	stored := *u
	r.s.users[u.ID] = &stored
	r.s.userByEmail[u.Email] = u.ID
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.userByEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.s.users[id]
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *stored
	return &u, nil
}

func (r *userRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	stored.IsAdmin = isAdmin
	u := *stored
	return &u, nil
}

func (r *userRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	all := make([]*domain.User, 0, len(r.s.users))
	for _, stored := range r.s.users {
		u := *stored
		all = append(all, &u)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return paginate(all, params), nil
}

func paginate[T any](items []T, params domain.PaginationParams) []T {
	offset := params.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + params.PageSize
	if params.PageSize <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
