package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/pagination"
)

// Service backs the profile endpoint and the admin user list.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, role *enums.UserRole, includeGuests bool, params pagination.Params) (*UserList, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, role *enums.UserRole, includeGuests bool, params pagination.Params) (*UserList, error) {
	if role != nil && !role.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid role %q", *role)
	}
	query := listQuery{Role: role, IncludeGuest: includeGuests, Limit: params.Limit}
	if strings.TrimSpace(params.Cursor) != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err == nil {
			_, err = cursor.Time()
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	page, next := pagination.Trim(rows, params.Limit, func(u models.User) pagination.Cursor {
		return pagination.TimeCursor(u.CreatedAt, u.ID)
	})
	out := &UserList{Users: make([]UserDTO, 0, len(page)), NextCursor: next}
	for i := range page {
		out.Users = append(out.Users, *FromModel(&page[i]))
	}
	return out, nil
}
