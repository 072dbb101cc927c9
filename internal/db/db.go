// Package db persists users and analyzed documents in Postgres via bun.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"golang.org/x/crypto/bcrypt"

	"legal-doc-assistant/internal/config"
	"legal-doc-assistant/internal/helper"
	"legal-doc-assistant/internal/models"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	Password  string    `bun:"password,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// DocumentRecord is one uploaded document together with its stored
// analysis summary.
type DocumentRecord struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID         string                 `bun:"id,pk" json:"doc_id"`
	UserID     string                 `bun:"user_id,notnull" json:"user_id"`
	DocName    string                 `bun:"doc_name,notnull" json:"doc_name"`
	Summary    *models.AnalysisReport `bun:"summary,type:jsonb" json:"summary,omitempty"`
	UploadDate time.Time              `bun:"upload_date,notnull" json:"upload_date"`
}

func ConnectDB(cfg *config.DatabaseConfig) *sql.DB {
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*User)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	if _, err := db.NewCreateTable().Model((*DocumentRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// CreateUser registers a new user with a bcrypt-hashed password.
func CreateUser(ctx context.Context, db *bun.DB, name, email, password string) (*User, error) {
	exists, err := db.NewSelect().Model((*User)(nil)).Where("email = ?", email).Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

// AuthenticateUser verifies credentials and returns the matching user.
func AuthenticateUser(ctx context.Context, db *bun.DB, email, password string) (*User, error) {
	user := new(User)
	err := db.NewSelect().Model(user).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// DocumentsByUser lists all documents a user has uploaded.
func DocumentsByUser(ctx context.Context, db *bun.DB, userID string) ([]DocumentRecord, error) {
	var docs []DocumentRecord
	err := db.NewSelect().Model(&docs).Where("user_id = ?", userID).Order("upload_date ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents for user %s: %w", userID, err)
	}
	return docs, nil
}

// UpsertDocumentSummary inserts or fully replaces a document's record.
func UpsertDocumentSummary(ctx context.Context, db *bun.DB, rec *DocumentRecord) error {
	_, err := db.NewInsert().
		Model(rec).
		On("CONFLICT (id) DO UPDATE").
		Set("doc_name = EXCLUDED.doc_name").
		Set("summary = EXCLUDED.summary").
		Set("upload_date = EXCLUDED.upload_date").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", rec.ID, err)
	}
	return nil
}

// DocumentByID fetches one document record, or nil when it does not exist.
func DocumentByID(ctx context.Context, db *bun.DB, docID string) (*DocumentRecord, error) {
	rec := new(DocumentRecord)
	err := db.NewSelect().Model(rec).Where("id = ?", docID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching document %s: %w", docID, err)
	}
	return rec, nil
}
