package service

import (
	"context"
	"fmt"
	"strings"

	"skillsocket/internal/domain"
)

const searchResultLimit = 20

// UserService exposes the user lookups the messaging surface needs.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Search finds users to start a new conversation with. The requester is
// excluded from the results.
func (s *UserService) Search(ctx context.Context, requesterID int64, query string) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return nil, fmt.Errorf("%w: search query must be at least 2 characters", domain.ErrInvalidInput)
	}
	return s.users.Search(ctx, requesterID, query, searchResultLimit)
}
