package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrNoDocument is returned by Persistence.Load for an unknown name.
var ErrNoDocument = errors.New("no such document")

// Persistence is the durable key-value backing for the TourStore: named
// JSON documents written whole on every mutation. SaveAll must apply all
// writes atomically so a tour and its stops never diverge on disk.
type Persistence interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	SaveAll(ctx context.Context, docs map[string][]byte) error
}

// SQLitePersistence stores documents as JSONB rows in the documents table
// created by the migrations package.
type SQLitePersistence struct {
	db *sql.DB
}

func NewSQLitePersistence(db *sql.DB) *SQLitePersistence {
	return &SQLitePersistence{db: db}
}

func (p *SQLitePersistence) Load(ctx context.Context, name string) ([]byte, error) {
	var data string
	err := p.db.QueryRowContext(ctx,
		`SELECT json(data) FROM documents WHERE name = ?`, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (p *SQLitePersistence) Save(ctx context.Context, name string, data []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO documents (name, data) VALUES (?, jsonb(?))
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data`,
		name, string(data),
	)
	return err
}

func (p *SQLitePersistence) SaveAll(ctx context.Context, docs map[string][]byte) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for name, data := range docs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (name, data) VALUES (?, jsonb(?))
			 ON CONFLICT(name) DO UPDATE SET data = excluded.data`,
			name, string(data),
		)
		if err != nil {
			return fmt.Errorf("saving document %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// MemoryPersistence is an in-process Persistence for tests.
type MemoryPersistence struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{docs: make(map[string][]byte)}
}

func (p *MemoryPersistence) Load(_ context.Context, name string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.docs[name]
	if !ok {
		return nil, ErrNoDocument
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (p *MemoryPersistence) Save(_ context.Context, name string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[name] = append([]byte(nil), data...)
	return nil
}

func (p *MemoryPersistence) SaveAll(_ context.Context, docs map[string][]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, data := range docs {
		p.docs[name] = append([]byte(nil), data...)
	}
	return nil
}
