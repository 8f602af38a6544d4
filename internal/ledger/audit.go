package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/models"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/repository"
)

// Audit entry kinds.
const (
	AuditKindSettlement   = "settlement"
	AuditKindAdminRefresh = "admin:refresh"
	AuditKindAdminSuspend = "admin:suspend"
	AuditKindAdminResume  = "admin:resume"
	AuditKindAdminSettle  = "admin:settle"
	AuditKindAdminUser    = "admin:user"
)

const defaultAuditRetention = 500

// AuditEntry is one recorded engine action.
type AuditEntry struct {
	Ref     string    `json:"ref"`
	Kind    string    `json:"kind"`
	MatchID int64     `json:"matchId,omitempty"`
	UserID  string    `json:"userId,omitempty"`
	Detail  string    `json:"detail"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

// AuditLog keeps the most recent engine actions in memory and mirrors them
// to the durable store when one is wired. Reads serve the admin API; the
// durable copy is the long-term record.
type AuditLog struct {
	Repo   repository.Repository
	Logger *zap.Logger

	mu      sync.Mutex
	retain  int
	entries []AuditEntry
}

func NewAuditLog(retain int, repo repository.Repository, logger *zap.Logger) *AuditLog {
	if retain <= 0 {
		retain = defaultAuditRetention
	}
	return &AuditLog{Repo: repo, Logger: logger, retain: retain}
}

// Record appends one entry. The durable write happens off the caller's
// goroutine and never fails the action being audited.
func (a *AuditLog) Record(kind string, matchID int64, userID, detail string, data any) AuditEntry {
	if a == nil {
		return AuditEntry{}
	}
	entry := AuditEntry{
		Ref:     uuid.New().String(),
		Kind:    kind,
		MatchID: matchID,
		UserID:  userID,
		Detail:  detail,
		Data:    data,
		At:      time.Now().UTC(),
	}

	a.mu.Lock()
	a.entries = append(a.entries, entry)
	if over := len(a.entries) - a.retain; over > 0 {
		a.entries = append([]AuditEntry(nil), a.entries[over:]...)
	}
	a.mu.Unlock()

	if a.Repo != nil {
		go a.persist(entry)
	}
	return entry
}

// Recent returns up to limit entries, newest first.
func (a *AuditLog) Recent(limit int) []AuditEntry {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit <= 0 || limit > len(a.entries) {
		limit = len(a.entries)
	}
	out := make([]AuditEntry, 0, limit)
	for i := len(a.entries) - 1; i >= len(a.entries)-limit; i-- {
		out = append(out, a.entries[i])
	}
	return out
}

func (a *AuditLog) persist(entry AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := &models.AuditEntry{
		Ref:     entry.Ref,
		Kind:    entry.Kind,
		MatchID: entry.MatchID,
		UserID:  entry.UserID,
		Detail:  entry.Detail,
	}
	if entry.Data != nil {
		if raw, err := json.Marshal(entry.Data); err == nil {
			row.Data = datatypes.JSON(raw)
		}
	}
	if err := a.Repo.InsertAudit(ctx, row); err != nil && a.Logger != nil {
		a.Logger.Warn("audit entry not persisted",
			zap.String("kind", entry.Kind),
			zap.Error(err))
	}
}
