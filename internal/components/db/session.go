package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Session owns a single connection out of the store's pool, the holder
// is the only user of it until Close.
type Session struct {
	store  *Store
	conn   *sql.Conn
	resets int
}

// NewSession checks out a dedicated connection.
func (s *Store) NewSession(ctx context.Context) (*Session, error) {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{store: s, conn: conn}, nil
}

// Queries runs outside of any transaction on the session's connection.
func (s *Session) Queries() *Queries {
	return New(s.conn, s.store.dialect)
}

// Tx begins a transaction on the session's connection. Exactly one of
// discard or commit must be called afterwards.
func (s *Session) Tx(ctx context.Context) (tx *Queries, discard, commit func() error, err error) {
	sqltx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	txqry := s.Queries().WithTx(sqltx)
	return txqry,
		func() error {
			return sqltx.Rollback()
		},
		func() error {
			return sqltx.Commit()
		},
		nil
}

// Reset gives the current connection back and checks out a fresh one,
// after a failed write the old connection may be left in a state the
// session should not keep using.
func (s *Session) Reset(ctx context.Context) error {
	err := s.conn.Close()
	if err != nil {
		s.store.tel.ReportDebug("session reset: closing old connection", err)
	}
	conn, err := s.store.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("reacquire connection: %w", err)
	}
	s.conn = conn
	s.resets++
	return nil
}

// Resets returns how many times Reset has swapped the connection.
func (s *Session) Resets() int {
	return s.resets
}

func (s *Session) Close() error {
	return s.conn.Close()
}
