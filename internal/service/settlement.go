package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/metrics"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/models"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/push"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/repository"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/settle"
)

// SettlementService turns finished matches into ledger settlements. Settle
// is called by the admin endpoint (optionally with an explicit winner) and
// by the sweep cron when a match's status line names a winner. A match
// settles exactly once: the in-memory ledger enforces it per process and
// the durable settlement row enforces it across restarts.
type SettlementService struct {
	Book   *market.Book
	Ledger *ledger.Ledger
	Locks  *market.ThresholdLocks
	Hub    *push.Hub
	Audit  *ledger.AuditLog
	Store  repository.Repository
	Logger *zap.Logger
}

type settledPayload struct {
	MatchID    int64             `json:"matchId"`
	WinnerCode string            `json:"winnerCode"`
	Positions  []ledger.Position `json:"positions"`
	Balance    decimal.Decimal   `json:"balance"`
}

// settlementRow is one (user, position, payout) line in the durable record.
type settlementRow struct {
	UserID     string          `json:"userId"`
	PositionID int64           `json:"positionId"`
	Payout     decimal.Decimal `json:"payout"`
	Outcome    string          `json:"outcome"`
}

// Settle resolves and applies one match settlement. A winner that cannot be
// determined leaves everything untouched so the call is retryable once more
// status data arrives.
func (s *SettlementService) Settle(ctx context.Context, matchID int64, explicitWinner string) (ledger.SettlementReport, error) {
	m, ok := s.Book.Match(matchID)
	if !ok {
		return ledger.SettlementReport{}, ledger.ErrMatchNotFound
	}
	if s.Ledger.IsMatchSettled(matchID) {
		return ledger.SettlementReport{}, ledger.ErrMatchSettled
	}
	if s.Store != nil {
		if done, err := s.Store.HasSettlement(ctx, matchID); err != nil {
			s.Logger.Warn("settlement lookup failed, trusting in-memory state",
				zap.Int64("match_id", matchID), zap.Error(err))
		} else if done {
			s.Ledger.MarkMatchSettled(matchID)
			return ledger.SettlementReport{}, ledger.ErrMatchSettled
		}
	}

	w, ok := settle.ResolveWinner(m, explicitWinner)
	if !ok {
		return ledger.SettlementReport{}, ledger.ErrNoWinner
	}

	report, err := s.Ledger.SettleMatch(matchID, w.Label, w.Code, settle.OutcomeFunc(m, w))
	if err != nil {
		return ledger.SettlementReport{}, err
	}

	s.Locks.Release(matchID)
	metrics.SettlementsTotal.Inc()

	s.notify(report)
	s.persist(report)
	s.Audit.Record(ledger.AuditKindSettlement, matchID, "",
		fmt.Sprintf("settled %d positions, winner %s", len(report.Positions), w.Label),
		map[string]any{
			"winnerCode":  w.Code,
			"totalPayout": report.TotalPayout,
			"positions":   len(report.Positions),
		})

	s.Logger.Info("match settled",
		zap.Int64("match_id", matchID),
		zap.String("winner", w.Label),
		zap.Int("positions", len(report.Positions)),
		zap.String("total_payout", report.TotalPayout.String()))

	return report, nil
}

// Sweep settles every listed match whose status line names a winner. Run on
// a cron; matches the resolver cannot decide are left for the next pass.
func (s *SettlementService) Sweep(ctx context.Context) int {
	settledCount := 0
	for _, m := range s.Book.Matches() {
		if s.Ledger.IsMatchSettled(m.ID) {
			continue
		}
		if _, won := normalize.WonPrefix(m.StatusText); !won {
			continue
		}
		if _, err := s.Settle(ctx, m.ID, ""); err == nil {
			settledCount++
		}
	}
	return settledCount
}

// notify emits one settlement event and one portfolio refresh per affected
// user.
func (s *SettlementService) notify(report ledger.SettlementReport) {
	byUser := make(map[string][]ledger.Position)
	for _, p := range report.Positions {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}
	for uid, positions := range byUser {
		s.Hub.ToUser(uid, push.EventPositionSettled, settledPayload{
			MatchID:    report.MatchID,
			WinnerCode: report.WinnerCode,
			Positions:  positions,
			Balance:    report.Balances[uid],
		})
		s.Hub.ToUser(uid, push.EventPortfolioUpdate, s.Ledger.Portfolio(uid))
	}
}

// persist mirrors the settlement to the durable store. Failures are logged
// and never unwind the in-memory settlement.
func (s *SettlementService) persist(report ledger.SettlementReport) {
	if s.Store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		rows := make([]settlementRow, 0, len(report.Positions))
		for _, p := range report.Positions {
			rows = append(rows, settlementRow{
				UserID:     p.UserID,
				PositionID: p.ID,
				Payout:     p.Payout,
				Outcome:    p.Outcome,
			})
			if err := s.Store.UpdatePosition(ctx, ledger.PositionRow(p)); err != nil {
				s.Logger.Warn("settled position not persisted",
					zap.Int64("position_id", p.ID), zap.Error(err))
			}
		}
		for uid := range report.Balances {
			if u, ok := s.Ledger.UserSnapshot(uid); ok {
				if err := s.Store.SaveWallet(ctx, ledger.WalletRow(u)); err != nil {
					s.Logger.Warn("settled wallet not persisted",
						zap.String("user_id", uid), zap.Error(err))
				}
			}
		}

		row := &models.Settlement{
			MatchID:       report.MatchID,
			WinnerLabel:   report.WinnerLabel,
			WinnerCode:    report.WinnerCode,
			PositionCount: len(report.Positions),
			TotalPayout:   report.TotalPayout,
			SettledAt:     report.SettledAt,
		}
		if raw, err := json.Marshal(rows); err == nil {
			row.Rows = datatypes.JSON(raw)
		}
		if err := s.Store.InsertSettlement(ctx, row); err != nil {
			s.Logger.Warn("settlement not persisted",
				zap.Int64("match_id", report.MatchID), zap.Error(err))
		}
	}()
}
