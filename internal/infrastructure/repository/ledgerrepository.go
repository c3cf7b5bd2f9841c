package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/persistence/models"
	"github.com/antrian-kiosk/antrian/internal/shared/constants"
	"github.com/antrian-kiosk/antrian/internal/shared/db"
	"github.com/antrian-kiosk/antrian/internal/shared/mapper"
)

// LedgerRepositoryImpl stores the ledger in a SQL table.
type LedgerRepositoryImpl struct {
	db  *gorm.DB
	txm *db.TransactionManager
}

func NewLedgerRepository(gdb *gorm.DB) *LedgerRepositoryImpl {
	return &LedgerRepositoryImpl{
		db:  gdb,
		txm: db.NewTransactionManager(gdb),
	}
}

func (r *LedgerRepositoryImpl) ReadRows(ctx context.Context) ([]ticket.Row, error) {
	var records []models.LedgerRowModel

	if err := db.GetTxFromContext(ctx, r.db).Scopes(db.InsertionOrder()).Find(&records).Error; err != nil {
		return nil, newSQLError("read", err)
	}

	rows := mapper.MapSlice(records, models.LedgerRowModel.ToRow)
	if rows == nil {
		rows = []ticket.Row{}
	}
	return rows, nil
}

func (r *LedgerRepositoryImpl) AppendRow(ctx context.Context, row ticket.Row) (*ticket.AppendResult, error) {
	model := models.NewLedgerRowModel(row)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return nil, newSQLError("append", err)
	}

	return &ticket.AppendResult{UpdatedRange: updatedRange(model.ID)}, nil
}

// AppendRowAt counts and inserts inside one transaction. On MySQL the count
// takes row locks; SQLite allows one writer per database.
func (r *LedgerRepositoryImpl) AppendRowAt(ctx context.Context, expectedRows int, row ticket.Row) (*ticket.AppendResult, error) {
	model := models.NewLedgerRowModel(row)

	err := r.txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := db.GetTxFromContext(txCtx, r.db)

		var count int64
		if err := tx.Model(&models.LedgerRowModel{}).Scopes(db.ForUpdate()).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(expectedRows) {
			return ticket.ErrVersionConflict
		}

		return tx.Create(model).Error
	})
	if stderrors.Is(err, ticket.ErrVersionConflict) {
		return nil, ticket.ErrVersionConflict
	}
	if err != nil {
		return nil, newSQLError("append", err)
	}

	return &ticket.AppendResult{UpdatedRange: updatedRange(model.ID)}, nil
}

func updatedRange(id uint64) string {
	return fmt.Sprintf("%s#%d", constants.TableLedgerRows, id)
}

// sqlError carries the MySQL error number, when there is one, as the
// ledger code.
type sqlError struct {
	op   string
	code string
	err  error
}

func newSQLError(op string, err error) error {
	e := &sqlError{op: op, err: err}
	var myErr *mysql.MySQLError
	if stderrors.As(err, &myErr) {
		e.code = strconv.Itoa(int(myErr.Number))
	}
	return e
}

func (e *sqlError) Error() string {
	return fmt.Sprintf("sql ledger %s failed: %v", e.op, e.err)
}

func (e *sqlError) Unwrap() error {
	return e.err
}

func (e *sqlError) LedgerCode() string {
	return e.code
}
