package models

import (
	"time"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/constants"
)

// LedgerRowModel is one issued ticket. The auto-increment ID is the
// insertion order; IssuedAt keeps the ledger string verbatim.
type LedgerRowModel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Number    string `gorm:"size:255;not null"`
	IssuedAt  string `gorm:"column:issued_at;size:19;not null;index"`
	CreatedAt time.Time
}

func (LedgerRowModel) TableName() string {
	return constants.TableLedgerRows
}

func NewLedgerRowModel(row ticket.Row) *LedgerRowModel {
	return &LedgerRowModel{Number: row.Number, IssuedAt: row.Timestamp}
}

func (m LedgerRowModel) ToRow() ticket.Row {
	return ticket.Row{Number: m.Number, Timestamp: m.IssuedAt}
}
