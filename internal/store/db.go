package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresDatabase stores each collection as a JSONB table.
type PostgresDatabase struct {
	Client *sql.DB

	mu     sync.Mutex
	tables map[string]*PostgresCollection
}

// NewPostgresDatabase creates a Postgres connection with sane defaults.
func NewPostgresDatabase(ctx context.Context, connString string) (*PostgresDatabase, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresDatabase{Client: db, tables: make(map[string]*PostgresCollection)}, nil
}

func (d *PostgresDatabase) Collection(name string) Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.tables[name]
	if !ok {
		c = &PostgresCollection{db: d.Client, name: name, table: pgx.Identifier{name}.Sanitize()}
		d.tables[name] = c
	}
	return c
}

func (d *PostgresDatabase) Ping(ctx context.Context) error {
	return d.Client.PingContext(ctx)
}

// Close closes the underlying connection.
func (d *PostgresDatabase) Close(context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// PostgresCollection maps the collection contract onto
// (seq BIGSERIAL, id TEXT, doc JSONB) rows. The table is created on first use.
type PostgresCollection struct {
	db    *sql.DB
	name  string
	table string

	mu    sync.Mutex
	ready bool
}

func (c *PostgresCollection) init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}
	_, err := c.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+c.table+` (
		seq BIGSERIAL PRIMARY KEY,
		id  TEXT NOT NULL UNIQUE,
		doc JSONB NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create table %s: %w", c.name, err)
	}
	c.ready = true
	return nil
}

func (c *PostgresCollection) FindOne(ctx context.Context, filter Filter, opts ...FindOption) (Document, error) {
	docs, err := c.find(ctx, filter, append(opts, Limit(1)))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (c *PostgresCollection) FindMany(ctx context.Context, filter Filter, opts ...FindOption) ([]Document, error) {
	return c.find(ctx, filter, opts)
}

func (c *PostgresCollection) find(ctx context.Context, filter Filter, opts []FindOption) ([]Document, error) {
	if err := c.init(ctx); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	where, args, err := whereClause(filter, nil)
	if err != nil {
		return nil, err
	}
	order, args := orderClause(o, args)
	query := `SELECT doc FROM ` + c.table + ` WHERE ` + where + order
	if o.Limit > 0 {
		args = append(args, o.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", c.name, err)
		}
		out = append(out, o.project(doc))
	}
	return out, rows.Err()
}

func (c *PostgresCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	if err := c.init(ctx); err != nil {
		return "", err
	}
	id := uuid.NewString()
	stored := pgDocument(doc)
	stored[IDField] = id
	raw, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	_, err = c.db.ExecContext(ctx, `INSERT INTO `+c.table+` (id, doc) VALUES ($1, $2::jsonb)`, id, string(raw))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}

func (c *PostgresCollection) UpdateOne(ctx context.Context, filter Filter, set Document) (UpdateResult, error) {
	if err := c.init(ctx); err != nil {
		return UpdateResult{}, err
	}
	patch, err := json.Marshal(pgDocument(set))
	if err != nil {
		return UpdateResult{}, err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return UpdateResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	args := []any{string(patch)}
	where, args, err := whereClause(filter, args)
	if err != nil {
		return UpdateResult{}, err
	}
	var (
		id        string
		unchanged bool
	)
	row := tx.QueryRowContext(ctx,
		`SELECT id, doc @> $1::jsonb FROM `+c.table+` WHERE `+where+` ORDER BY seq LIMIT 1 FOR UPDATE`, args...)
	if err := row.Scan(&id, &unchanged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UpdateResult{}, nil
		}
		return UpdateResult{}, err
	}
	if unchanged {
		return UpdateResult{Matched: 1}, tx.Commit()
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+c.table+` SET doc = doc || $1::jsonb WHERE id = $2`, string(patch), id); err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{Matched: 1, Modified: 1}, tx.Commit()
}

func (c *PostgresCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	if err := c.init(ctx); err != nil {
		return 0, err
	}
	where, args, err := whereClause(filter, nil)
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM `+c.table+` WHERE seq = (SELECT seq FROM `+c.table+` WHERE `+where+` ORDER BY seq LIMIT 1)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *PostgresCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	if err := c.init(ctx); err != nil {
		return 0, err
	}
	where, args, err := whereClause(filter, nil)
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM `+c.table+` WHERE `+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *PostgresCollection) EnsureUnique(ctx context.Context, field string) error {
	if err := c.init(ctx); err != nil {
		return err
	}
	index := pgx.Identifier{c.name + "_" + field + "_unique"}.Sanitize()
	literal := "'" + strings.ReplaceAll(field, "'", "''") + "'"
	_, err := c.db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS `+index+` ON `+c.table+` ((doc->>`+literal+`))`)
	return err
}

// pgTimeLayout is fixed width so JSONB string order is chronological.
const pgTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func pgValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(pgTimeLayout)
	}
	return v
}

func pgDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = pgValue(v)
	}
	return out
}

// orderClause renders the sort of o, newest rows first on ties.
func orderClause(o FindOptions, args []any) (string, []any) {
	if o.SortDesc == "" {
		return " ORDER BY seq", args
	}
	args = append(args, o.SortDesc)
	return fmt.Sprintf(" ORDER BY doc->($%d::text) DESC, seq DESC", len(args)), args
}

// whereClause renders filter as SQL, numbering placeholders after args.
func whereClause(filter Filter, args []any) (string, []any, error) {
	var clauses []string
	eq := map[string]any{}
	for field, v := range filter {
		if in, ok := v.(In); ok {
			args = append(args, field, []string(in))
			clauses = append(clauses, fmt.Sprintf("doc->>($%d::text) = ANY($%d::text[])", len(args)-1, len(args)))
			continue
		}
		eq[field] = pgValue(v)
	}
	if len(eq) > 0 {
		raw, err := json.Marshal(eq)
		if err != nil {
			return "", nil, err
		}
		args = append(args, string(raw))
		clauses = append(clauses, fmt.Sprintf("doc @> $%d::jsonb", len(args)))
	}
	if len(clauses) == 0 {
		return "TRUE", args, nil
	}
	return strings.Join(clauses, " AND "), args, nil
}
