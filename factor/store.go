package factor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"

	"github.com/ardnew/ecalc/lang"
	"github.com/ardnew/ecalc/log"
)

// Record is one stored factor. Retired records stay in the table with a
// nonzero Retired stamp and are invisible to lookups.
type Record struct {
	ID        uint                  `json:"-"          gorm:"primaryKey"`
	Kind      Kind                  `json:"kind"       gorm:"size:16;uniqueIndex:idx_factor_key"`
	Key       string                `json:"key"        gorm:"uniqueIndex:idx_factor_key"`
	Type      string                `json:"type"       gorm:"size:16"`
	Text      string                `json:"value"`
	Source    string                `json:"source,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
	Retired   soft_delete.DeletedAt `json:"-"          gorm:"softDelete:nano;uniqueIndex:idx_factor_key"`
}

// TableName implements gorm's tabler.
func (Record) TableName() string { return "factors" }

// Value decodes the stored text.
func (r Record) Value() (lang.Value, error) {
	switch r.Type {
	case "", "null":
		return nil, nil
	case lang.KindNumber.String():
		return lang.NumberFromString(r.Text)
	case lang.KindBoolean.String():
		return lang.Boolean(r.Text == "true"), nil
	default:
		return lang.String(r.Text), nil
	}
}

func record(kind Kind, key string, v lang.Value) Record {
	r := Record{Kind: kind, Key: key, Type: "null"}

	if v != nil {
		r.Type = v.Kind().String()
		r.Text = v.String()
	}

	return r
}

// Store is a [Source] backed by a SQLite database through gorm.
type Store struct {
	db     *gorm.DB
	logger log.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger routes SQL statements to logger at trace level.
func WithStoreLogger(logger log.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// Open opens (creating if needed) the SQLite database at dsn and migrates
// its schema. Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, dsn string, opts ...StoreOption) (*Store, error) {
	s := &Store{}

	for _, opt := range opts {
		opt(s)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger{logger: s.logger},
		TranslateError: true,
	})
	if err != nil {
		return nil, ErrStore.Wrap(err).With(slog.String("dsn", dsn))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, ErrStore.Wrap(err)
	}

	// one connection keeps a :memory: database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		_ = sqlDB.Close()

		return nil, ErrStore.Wrap(err).With(slog.String("dsn", dsn))
	}

	s.db = db

	s.logger.DebugContext(ctx, "factor store open", slog.String("dsn", dsn))

	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return ErrStore.Wrap(err)
	}

	return sqlDB.Close()
}

// Put stores v under kind and key. An active record for the same key is
// retired first, so [Store.History] keeps every revision.
// source is free text describing where the value came from.
func (s *Store) Put(ctx context.Context, kind Kind, key string, v lang.Value, source string) error {
	if err := validate(ctx, kind, key, v); err != nil {
		return err
	}

	r := record(kind, key, v)
	r.Source = source

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("kind = ? AND `key` = ?", kind, key).Delete(&Record{}).Error
		if err != nil {
			return err
		}

		return tx.Create(&r).Error
	})
	if err != nil {
		return ErrStore.Wrap(err).With(slog.String("kind", string(kind)), slog.String("key", key))
	}

	return nil
}

// PutFormula stores formula text under key after checking that it parses.
func (s *Store) PutFormula(ctx context.Context, key, text, source string) error {
	return s.Put(ctx, KindFormula, key, lang.String(text), source)
}

// Import stores every entry of t in a single transaction.
func (s *Store) Import(ctx context.Context, t *Table, source string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs := &Store{db: tx, logger: s.logger}

		return t.Each(func(kind Kind, key string, v lang.Value) error {
			return txs.Put(ctx, kind, key, v, source)
		})
	})
}

// Retire hides the active record for kind and key from lookups.
func (s *Store) Retire(ctx context.Context, kind Kind, key string) error {
	res := s.db.WithContext(ctx).
		Where("kind = ? AND `key` = ?", kind, key).
		Delete(&Record{})
	if res.Error != nil {
		return ErrStore.Wrap(res.Error)
	}

	if res.RowsAffected == 0 {
		return notFound(kind, key)
	}

	return nil
}

// List returns the active records of kind ordered by key. An empty kind
// lists every record.
func (s *Store) List(ctx context.Context, kind Kind) ([]Record, error) {
	q := s.db.WithContext(ctx).Order("kind, `key`")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var out []Record
	if err := q.Find(&out).Error; err != nil {
		return nil, ErrStore.Wrap(err)
	}

	return out, nil
}

// History returns every record of kind and key, retired ones included,
// newest first.
func (s *Store) History(ctx context.Context, kind Kind, key string) ([]Record, error) {
	var out []Record

	err := s.db.WithContext(ctx).Unscoped().
		Where("kind = ? AND `key` = ?", kind, key).
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, ErrStore.Wrap(err)
	}

	return out, nil
}

func (s *Store) lookup(ctx context.Context, kind Kind, key string) (lang.Value, error) {
	var r Record

	err := s.db.WithContext(ctx).
		Where("kind = ? AND `key` = ?", kind, key).
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(kind, key)
	}

	if err != nil {
		return nil, ErrStore.Wrap(err).With(slog.String("kind", string(kind)), slog.String("key", key))
	}

	return r.Value()
}

func (s *Store) number(ctx context.Context, kind Kind, key string) (decimal.Decimal, error) {
	v, err := s.lookup(ctx, kind, key)
	if err != nil {
		return decimal.Decimal{}, err
	}

	n, ok := v.(lang.Number)
	if !ok {
		return decimal.Decimal{}, ErrNotNumeric.With(slog.String("kind", string(kind)), slog.String("key", key))
	}

	return n.Decimal(), nil
}

func (s *Store) GWP(ctx context.Context, key string) (decimal.Decimal, error) {
	return s.number(ctx, KindGWP, key)
}

func (s *Store) EmissionFactor(ctx context.Context, key string) (decimal.Decimal, error) {
	return s.number(ctx, KindEmission, key)
}

func (s *Store) Value(ctx context.Context, key string) (lang.Value, error) {
	return s.lookup(ctx, KindValue, key)
}

func (s *Store) Formula(ctx context.Context, key string) (string, error) {
	v, err := s.lookup(ctx, KindFormula, key)
	if err != nil {
		return "", err
	}

	str, ok := v.(lang.String)
	if !ok {
		return "", ErrInvalidTable.With(slog.String("formula", key))
	}

	return str.Text(), nil
}

// validate applies the Table rules for kind to v.
func validate(ctx context.Context, kind Kind, key string, v lang.Value) error {
	return NewTable().Put(ctx, kind, key, v)
}
