package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"communityfund/internal/infra"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type stubRows struct {
	rows []func(dest ...any) error
	idx  int
	err  error
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return r.err }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in stub rows")
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	return r.rows[r.idx-1](dest...)
}

// stubExec records every query and answers with canned results.
type stubExec struct {
	queries  []string
	args     [][]any
	row      func(query string, args []any) pgx.Row
	rows     func(query string) (pgx.Rows, error)
	execTag  pgconn.CommandTag
	execErr  error
	inTx     int
	failInTx error
}

func (s *stubExec) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.queries = append(s.queries, query)
	s.args = append(s.args, args)
	return s.execTag, s.execErr
}

func (s *stubExec) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	s.queries = append(s.queries, query)
	s.args = append(s.args, args)
	if s.row == nil {
		return stubRow{}
	}
	return s.row(query, args)
}

func (s *stubExec) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	s.queries = append(s.queries, query)
	s.args = append(s.args, args)
	if s.rows == nil {
		return &stubRows{}, nil
	}
	return s.rows(query)
}

type stubTxExec struct {
	*stubExec
}

func (s stubTxExec) InTx(_ context.Context, fn func(infra.SQLExecutor) error) error {
	s.inTx++
	if err := fn(s.stubExec); err != nil {
		return err
	}
	return s.failInTx
}
