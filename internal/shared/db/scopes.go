package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertionOrder sorts by the auto-increment primary key, which is the
// order rows were appended in.
func InsertionOrder() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}
}

// ForUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE.
// SQLite serializes writers per database and needs no clause.
func ForUpdate() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector != nil && db.Dialector.Name() == "mysql" {
			return db.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		return db
	}
}
