package sqlc

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Dialect uint8

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// NewWithDialect is New for drivers that do not understand $N placeholders.
func NewWithDialect(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:      tx,
		dialect: q.dialect,
	}
}

func (q *Queries) rebind(query string) string {
	if q.dialect == DialectPostgres {
		return query
	}
	return rebindQuestion(query)
}

// rebindQuestion turns $1, $2 ... into ? placeholders. Every query of
// this package uses each argument once and in order.
func rebindQuestion(query string) string {
	var sb strings.Builder
	sb.Grow(len(query))

	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			sb.WriteByte(query[i])
			continue
		}

		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if _, err := strconv.Atoi(query[i+1 : j]); err != nil {
			sb.WriteByte(query[i])
			continue
		}
		sb.WriteByte('?')
		i = j - 1
	}
	return sb.String()
}
