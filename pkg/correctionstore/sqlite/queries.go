package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

const insertCorrection = `
insert into corrections (typo, correction, corrected_at)
values (?, ?, ?)
`

type InsertCorrectionParams struct {
	Typo        string
	Correction  string
	CorrectedAt time.Time
}

func (q *Queries) InsertCorrection(ctx context.Context, arg InsertCorrectionParams) error {
	_, err := q.db.ExecContext(ctx, insertCorrection, arg.Typo, arg.Correction, arg.CorrectedAt.UTC())
	return err
}

const countCorrections = `
select count(*) from corrections
`

func (q *Queries) CountCorrections(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCorrections)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countCorrectionsSince = `
select count(*) from corrections
where corrected_at >= ?
`

func (q *Queries) CountCorrectionsSince(ctx context.Context, since time.Time) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCorrectionsSince, since.UTC())
	var count int64
	err := row.Scan(&count)
	return count, err
}

const topTypos = `
select typo, correction, count(*) as uses
from corrections
group by typo, correction
order by uses desc, typo
limit ?
`

type TopTyposRow struct {
	Typo       string
	Correction string
	Uses       int64
}

func (q *Queries) TopTypos(ctx context.Context, limit int64) ([]TopTyposRow, error) {
	rows, err := q.db.QueryContext(ctx, topTypos, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TopTyposRow
	for rows.Next() {
		var i TopTyposRow
		if err := rows.Scan(&i.Typo, &i.Correction, &i.Uses); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const dumpTables = `
select sql from sqlite_master
where type = 'table' and name not like 'sqlite_%'
order by name
`

func (q *Queries) DumpTables(ctx context.Context) ([]*string, error) {
	return q.dumpStatements(ctx, dumpTables)
}

const dumpRest = `
select sql from sqlite_master
where type != 'table'
order by name
`

func (q *Queries) DumpRest(ctx context.Context) ([]*string, error) {
	return q.dumpStatements(ctx, dumpRest)
}

func (q *Queries) dumpStatements(ctx context.Context, query string) ([]*string, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*string
	for rows.Next() {
		var statement sql.NullString
		if err := rows.Scan(&statement); err != nil {
			return nil, err
		}
		if !statement.Valid {
			items = append(items, nil)
			continue
		}
		s := statement.String
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
