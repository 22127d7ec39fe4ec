package repository

import (
	"context"

	"github.com/fieldlane/fieldlane-auth/internal/domain"
)

// UserRepository exposes persistence for platform users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByPhone(ctx context.Context, phone string) (domain.User, error)
	GetByID(ctx context.Context, userID int64) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, user domain.User) error
}

// CompanyRepository exposes company lookups by id and join code.
type CompanyRepository interface {
	GetByUniqueID(ctx context.Context, uniqueID string) (domain.Company, error)
	GetByID(ctx context.Context, companyID int64) (domain.Company, error)
	Create(ctx context.Context, company domain.Company) (domain.Company, error)
}
