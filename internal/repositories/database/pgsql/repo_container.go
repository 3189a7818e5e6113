package pgsql

import (
	portsrepo "github.com/hawltrack/zakat_engine_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		HawlRepo:     newPgxHawlRepository(dbPool),
		SnapshotRepo: newPgxSnapshotRepository(dbPool),
		PaymentRepo:  newPgxPaymentRepository(dbPool),
	}
}
