// Package kv is the per-user key/value state the client persists between
// visits: theme, cached topic list, the legacy score tables. Simple
// get/set/remove by key; not part of the core quiz contract.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, userID, key string) (string, error)
	Set(ctx context.Context, userID, key, value string) error
	Remove(ctx context.Context, userID, key string) error
}

type memoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewInMemoryStore() Store {
	return &memoryStore{m: map[string]string{}}
}

func mk(userID, key string) string { return userID + "\x00" + key }

func (s *memoryStore) Get(_ context.Context, userID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[mk(userID, key)]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[mk(userID, key)] = value
	return nil
}

func (s *memoryStore) Remove(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, mk(userID, key))
	return nil
}

type sqlStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) Store { return &sqlStore{db: db} }

func (s *sqlStore) Get(ctx context.Context, userID, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE user_id=$1 AND k=$2`, userID, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *sqlStore) Set(ctx context.Context, userID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (user_id,k,v,updated_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id,k) DO UPDATE SET v=EXCLUDED.v, updated_at=EXCLUDED.updated_at`,
		userID, key, value, time.Now().Unix())
	return err
}

func (s *sqlStore) Remove(ctx context.Context, userID, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE user_id=$1 AND k=$2`, userID, key)
	return err
}
