package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID  uint64 `gorm:"primaryKey;autoIncrement"`
	Ref string `gorm:"type:varchar(64);not null;uniqueIndex"`

	UserID      string `gorm:"type:varchar(100);not null;index"`
	MatchID     int64  `gorm:"not null;index"`
	MarketID    int    `gorm:"not null"`
	OptionLabel string `gorm:"type:varchar(200);not null"`
	Side        string `gorm:"type:varchar(10);not null"`

	Price  int             `gorm:"not null"`
	Amount decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Shares decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Order) TableName() string {
	return "orders"
}
