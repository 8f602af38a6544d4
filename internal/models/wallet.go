package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID string `gorm:"type:varchar(100);not null;uniqueIndex"`

	Balance     decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	HeldBalance decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	Suspended   bool   `gorm:"not null;default:false"`
	DisplayName string `gorm:"type:varchar(100)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Wallet) TableName() string {
	return "wallets"
}
