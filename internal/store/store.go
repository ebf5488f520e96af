// Package store provides SQLite persistence for articles and users.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

type Store struct {
	sqldb *sql.DB
	db    *bun.DB
}

type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID        int64           `bun:"id,pk,autoincrement"`
	Title     string          `bun:"title,notnull"`
	Body      string          `bun:"body,notnull"`
	ShowID    sql.Null[int64] `bun:"show_id,nullzero"`
	Author    string          `bun:"author,notnull"`
	CreatedAt string          `bun:"created_at,notnull"`
	UpdatedAt string          `bun:"updated_at,notnull"`
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Email        string `bun:"email,notnull"`
	PasswordHash string `bun:"password_hash,notnull"`
	Role         string `bun:"role,notnull"`
	CreatedAt    string `bun:"created_at,notnull"`
	UpdatedAt    string `bun:"updated_at,notnull"`
}

type ArticleFilters struct {
	ShowID *int64
	Limit  int
}

type ArticleUpdate struct {
	Title  string
	Body   string
	ShowID sql.Null[int64]
}

// Open opens (creating if needed) the database at dbPath. ":memory:" is accepted.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("DB_PATH is required")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}

	sqldb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqldb.SetMaxOpenConns(1)
	}

	ctx := context.Background()
	if err := sqldb.PingContext(ctx); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, fmt.Errorf("ping db: %w; close failed: %w", err, cerr)
		}
		return nil, err
	}

	if err := initSchema(ctx, sqldb); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, fmt.Errorf("init schema: %w; close failed: %w", err, cerr)
		}
		return nil, err
	}

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	return &Store{sqldb: sqldb, db: bdb}, nil
}

func (s *Store) Close() error { return s.sqldb.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.sqldb.PingContext(ctx) }

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	show_id INTEGER,
	author TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_show_id ON articles(show_id);
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *Store) CreateArticle(ctx context.Context, article *Article) (Article, error) {
	ts := now()

	// Copy to avoid mutating caller-owned object.
	a := *article
	a.ID = 0
	a.CreatedAt = ts
	a.UpdatedAt = ts

	_, err := s.db.NewInsert().
		Model(&a).
		Column("title", "body", "show_id", "author", "created_at", "updated_at").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

func (s *Store) GetArticle(ctx context.Context, id int64) (Article, error) {
	var a Article
	err := s.db.NewSelect().
		Model(&a).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	return a, err
}

func (s *Store) ListArticles(ctx context.Context, filters ArticleFilters) (out []Article, err error) {
	out = []Article{}
	q := s.db.NewSelect().Model(&out)
	if filters.ShowID != nil {
		q = q.Where("show_id = ?", *filters.ShowID)
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit)
	}
	err = q.OrderExpr("updated_at DESC, id DESC").Scan(ctx)
	return out, err
}

func (s *Store) UpdateArticle(ctx context.Context, id int64, update ArticleUpdate) (Article, error) {
	res, err := s.db.NewUpdate().
		Table("articles").
		Set("title = ?", update.Title).
		Set("body = ?", update.Body).
		Set("show_id = ?", update.ShowID).
		Set("updated_at = ?", now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return Article{}, err
	}
	if err := expectRowsAffected(res); err != nil {
		return Article{}, err
	}
	return s.GetArticle(ctx, id)
}

func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().
		Table("articles").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRowsAffected(res)
}

// UpsertUser inserts the user or, when the email exists, replaces its hash and role.
func (s *Store) UpsertUser(ctx context.Context, user *User) (User, error) {
	ts := now()

	u := *user
	u.Email = strings.TrimSpace(u.Email)
	u.CreatedAt = ts
	u.UpdatedAt = ts

	_, err := s.db.NewInsert().
		Model(&u).
		Column("email", "password_hash", "role", "created_at", "updated_at").
		On("CONFLICT (email) DO UPDATE").
		Set("password_hash = EXCLUDED.password_hash").
		Set("role = EXCLUDED.role").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return User{}, err
	}
	return s.GetUserByEmail(ctx, u.Email)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.NewSelect().
		Model(&u).
		Where("email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)
	return u, err
}

func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.db.NewUpdate().
		Table("users").
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", now()).
		Where("email = ?", strings.TrimSpace(email)).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRowsAffected(res)
}

func expectRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
