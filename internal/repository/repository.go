package repository

import (
	"context"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/models"
)

// Repository is the durable store behind the in-memory ledger. The engine
// is fully functional without one: implementations are expected to no-op on
// a nil receiver, and callers treat a nil interface the same way.
type Repository interface {
	Ping(ctx context.Context) error

	SaveWallet(ctx context.Context, item *models.Wallet) error
	LoadWallets(ctx context.Context) ([]models.Wallet, error)

	InsertOrder(ctx context.Context, item *models.Order) error

	InsertPosition(ctx context.Context, item *models.Position) error
	UpdatePosition(ctx context.Context, item *models.Position) error
	LoadOpenPositions(ctx context.Context) ([]models.Position, error)
	MaxPositionID(ctx context.Context) (int64, error)

	InsertSettlement(ctx context.Context, item *models.Settlement) error
	HasSettlement(ctx context.Context, matchID int64) (bool, error)

	InsertAudit(ctx context.Context, item *models.AuditEntry) error
	InsertFeedSnapshot(ctx context.Context, item *models.FeedSnapshot) error
}
