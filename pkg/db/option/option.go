package option

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption narrows or orders a repository query.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// DateRange keeps rows whose date falls within [start, end], both inclusive.
// A zero bound is open. Bounds are bound as UTC midnights so they compare the
// same way the stored dates were written.
func DateRange(start, end time.Time) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if !start.IsZero() {
			db = db.Where("date >= ?", Midnight(start))
		}
		if !end.IsZero() {
			db = db.Where("date < ?", Midnight(end).AddDate(0, 0, 1))
		}
		return db
	})
}

// Midnight returns the calendar day of t as 00:00 UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OnDate keeps rows dated exactly day.
func OnDate(day time.Time) QueryOption {
	return DateRange(day, day)
}

func CustomerID(id int64) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if id == 0 {
			return db
		}
		return db.Where("customer_id = ?", id)
	})
}

// OrderByDateDesc is the listing order for dated transactions.
func OrderByDateDesc() QueryOption {
	return OrderBy("date desc, created_at desc, id desc")
}

func OrderBy(order string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

func Where(query interface{}, args ...interface{}) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

func Limit(n int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n)
	})
}

// ForUpdate takes a row lock on dialects that support it.
func ForUpdate() QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	})
}
