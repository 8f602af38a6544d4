package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEntry struct {
	ID  uint64 `gorm:"primaryKey;autoIncrement"`
	Ref string `gorm:"type:varchar(64);not null;uniqueIndex"`

	Kind    string `gorm:"type:varchar(50);not null;index"`
	MatchID int64  `gorm:"index"`
	UserID  string `gorm:"type:varchar(100);index"`
	Detail  string `gorm:"type:text"`

	Data datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
