package store

import (
	"context"
	"errors"

	"muniboard-be/models"
)

var (
	ErrNotLoaded     = errors.New("dataset not loaded")
	ErrIssueNotFound = errors.New("issue not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("user with this email already exists")
	ErrAlreadyLinked = errors.New("user is already a contractor")
	ErrLinkNotFound  = errors.New("contractor link not found")
)

// IssueRepository and friends keep persistence out of the business logic:
// the in-memory snapshot store is the primary implementation, MongoDB the
// swappable real one.
type IssueRepository interface {
	List(ctx context.Context) ([]models.Issue, error)
	Get(ctx context.Context, id int) (*models.Issue, error)
	Create(ctx context.Context, issue *models.Issue) error
	Update(ctx context.Context, issue models.Issue) (*models.Issue, error)
}

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u models.User) (*models.User, error)
	Delete(ctx context.Context, id int) error
}

type ContractorRepository interface {
	List(ctx context.Context) ([]models.Contractor, error)
	Link(ctx context.Context, userID int) (*models.Contractor, error)
	Unlink(ctx context.Context, userID int) error
}
