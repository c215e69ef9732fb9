package authz

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

// AccountReader is the read the resolver needs from the account store.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// AccountReaderFunc adapts a function to AccountReader.
type AccountReaderFunc func(ctx context.Context, id string) (*models.Account, error)

func (f AccountReaderFunc) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return f(ctx, id)
}

// AccountsFrom reads accounts through the repository's default connection.
func AccountsFrom(repo repositories.AccountRepository) AccountReader {
	return AccountReaderFunc(func(ctx context.Context, id string) (*models.Account, error) {
		return repo.GetByID(ctx, nil, id)
	})
}

// PrincipalResolver loads the account behind an authenticated subject. It
// performs one uncached read per call and never creates accounts.
type PrincipalResolver struct {
	accounts AccountReader
}

func NewPrincipalResolver(accounts AccountReader) *PrincipalResolver {
	return &PrincipalResolver{accounts: accounts}
}

// Resolve returns ErrUnauthenticated for an empty subject, ErrAccountNotFound
// when no account exists and an UnavailableError when the read fails.
func (r *PrincipalResolver) Resolve(ctx context.Context, subjectID string) (Principal, *models.Account, error) {
	if strings.TrimSpace(subjectID) == "" {
		return Principal{}, nil, ErrUnauthenticated
	}

	account, err := r.accounts.GetByID(ctx, subjectID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return Principal{}, nil, ErrAccountNotFound
		}
		return Principal{}, nil, Unavailable("resolve principal", err)
	}
	if account == nil {
		return Principal{}, nil, ErrAccountNotFound
	}

	return PrincipalFromAccount(account), account, nil
}
