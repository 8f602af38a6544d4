package ledger

import (
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/models"
)

// WalletRow converts a wallet to its durable form.
func WalletRow(u User) *models.Wallet {
	return &models.Wallet{
		UserID:      u.ID,
		Balance:     u.Balance,
		HeldBalance: u.HeldBalance,
		Suspended:   u.Suspended,
		DisplayName: u.DisplayName,
	}
}

// PositionRow converts a position to its durable form.
func PositionRow(p Position) *models.Position {
	return &models.Position{
		ID:              p.ID,
		UserID:          p.UserID,
		MatchID:         p.MatchID,
		MarketID:        p.MarketID,
		MarketTitle:     p.MarketTitle,
		OptionLabel:     p.OptionLabel,
		Side:            p.Side,
		Price:           p.Price,
		Shares:          p.Shares,
		SharesRemaining: p.SharesRemaining,
		Stake:           p.Stake,
		StakeRemaining:  p.StakeRemaining,
		Status:          p.Status,
		Outcome:         p.Outcome,
		Payout:          p.Payout,
		OpenedAt:        p.OpenedAt,
		ClosedAt:        p.ClosedAt,
		SettledAt:       p.SettledAt,
	}
}

func orderRow(o Order) *models.Order {
	return &models.Order{
		Ref:         o.Ref,
		UserID:      o.UserID,
		MatchID:     o.MatchID,
		MarketID:    o.MarketID,
		OptionLabel: o.OptionLabel,
		Side:        o.Side,
		Price:       o.Price,
		Amount:      o.Amount,
		Shares:      o.Shares,
		CreatedAt:   o.CreatedAt,
	}
}

func userFromRow(row models.Wallet) User {
	return User{
		ID:          row.UserID,
		Balance:     row.Balance,
		HeldBalance: row.HeldBalance,
		Suspended:   row.Suspended,
		DisplayName: row.DisplayName,
		CreatedAt:   row.CreatedAt,
	}
}

func positionFromRow(row models.Position) Position {
	return Position{
		ID:              row.ID,
		UserID:          row.UserID,
		MatchID:         row.MatchID,
		MarketID:        row.MarketID,
		MarketTitle:     row.MarketTitle,
		OptionLabel:     row.OptionLabel,
		Side:            row.Side,
		Price:           row.Price,
		Shares:          row.Shares,
		SharesRemaining: row.SharesRemaining,
		Stake:           row.Stake,
		StakeRemaining:  row.StakeRemaining,
		Status:          row.Status,
		Outcome:         row.Outcome,
		Payout:          row.Payout,
		OpenedAt:        row.OpenedAt,
		ClosedAt:        row.ClosedAt,
		SettledAt:       row.SettledAt,
	}
}
