// Package users is the credential store adapter: it persists and looks up
// user records by username. Lookups that find nothing return
// common.ErrorNotFound; inserts that hit the username uniqueness constraint
// return common.ErrorAlreadyExists.
package users

import (
	"context"

	"github.com/dmitrijs2005/cmsauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
