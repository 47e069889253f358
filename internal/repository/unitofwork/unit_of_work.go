package unitofwork

import (
	"context"

	"ai-lawmatch-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CaseRepository() contract.CaseRepository
	LawyerRepository() contract.LawyerRepository
	MatchRepository() contract.MatchRepository
}
