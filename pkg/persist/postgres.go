package persist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/td0m/tracker/pkg/task"
)

// Postgres stores a snapshot in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, log: slog.New(slog.DiscardHandler)}
}

// ConnectPostgres opens a pool for url and makes sure the tables exist.
func ConnectPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	p := NewPostgres(pool)
	if err := p.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) WithLogger(l *slog.Logger) *Postgres {
	if l != nil {
		p.log = l
	}
	return p
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// EnsureTable creates the entity and history tables if they don't exist.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tracker_entities (
			id          INTEGER PRIMARY KEY,
			kind        TEXT NOT NULL,
			title       TEXT NOT NULL,
			status      TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			minutes     BIGINT,
			start_time  TIMESTAMP,
			epic_id     INTEGER
		)`)
	if err != nil {
		return fmt.Errorf("create tracker_entities: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tracker_history (
			position  INTEGER PRIMARY KEY,
			entity_id INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create tracker_history: %w", err)
	}
	return nil
}

func (p *Postgres) Save(snap task.Snapshot) error {
	ctx := context.Background()
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE tracker_entities, tracker_history`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	sv := newSavable(snap)
	for _, r := range sv.Rows {
		var epic *int
		if r.Kind == task.KindSubtask {
			e := int(r.Epic)
			epic = &e
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO tracker_entities (id, kind, title, status, description, minutes, start_time, epic_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			int(r.ID), r.Kind.String(), r.Title, r.Status.String(), r.Description, r.Minutes, r.Start, epic)
		if err != nil {
			return fmt.Errorf("insert %s %d: %w", r.Kind, r.ID, err)
		}
	}
	for i, id := range sv.History {
		if _, err := tx.Exec(ctx, `INSERT INTO tracker_history (position, entity_id) VALUES ($1, $2)`, i, int(id)); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *Postgres) Load() (task.Snapshot, error) {
	ctx := context.Background()
	rows, err := p.pool.Query(ctx, `
		SELECT id, kind, title, status, description, minutes, start_time, epic_id
		FROM tracker_entities ORDER BY id`)
	if err != nil {
		return task.Snapshot{}, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var sv savable
	for rows.Next() {
		var (
			id           int
			kind, status string
			r            row
			start        *time.Time
			epic         *int
		)
		if err := rows.Scan(&id, &kind, &r.Title, &status, &r.Description, &r.Minutes, &start, &epic); err != nil {
			return task.Snapshot{}, fmt.Errorf("scan entity: %w", err)
		}
		r.ID = task.ID(id)
		if r.Kind, err = task.ParseKind(kind); err != nil {
			p.log.Warn("skipped row", "id", id, "err", fmt.Errorf("%v: %w", err, ErrMalformedRow))
			continue
		}
		if r.Status, err = task.ParseStatus(status); err != nil {
			p.log.Warn("skipped row", "id", id, "err", fmt.Errorf("%v: %w", err, ErrMalformedRow))
			continue
		}
		if start != nil {
			t := wallClock(*start)
			r.Start = &t
		}
		if r.Kind == task.KindSubtask {
			if epic == nil {
				p.log.Warn("skipped row", "id", id, "err", fmt.Errorf("subtask without epic: %w", ErrMalformedRow))
				continue
			}
			r.Epic = task.ID(*epic)
		}
		sv.Rows = append(sv.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return task.Snapshot{}, fmt.Errorf("query entities: %w", err)
	}

	hist, err := p.pool.Query(ctx, `SELECT entity_id FROM tracker_history ORDER BY position`)
	if err != nil {
		return task.Snapshot{}, fmt.Errorf("query history: %w", err)
	}
	defer hist.Close()
	for hist.Next() {
		var id int
		if err := hist.Scan(&id); err != nil {
			return task.Snapshot{}, fmt.Errorf("scan history: %w", err)
		}
		sv.History = append(sv.History, task.ID(id))
	}
	if err := hist.Err(); err != nil {
		return task.Snapshot{}, fmt.Errorf("query history: %w", err)
	}
	return sv.Snapshot()
}
