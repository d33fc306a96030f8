package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/hetiograph/internal/domain"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

// NodeDocument is the mirrored row for one node.
type NodeDocument struct {
	ID        string         `gorm:"column:id;primaryKey"`
	Name      string         `gorm:"column:name"`
	Kind      string         `gorm:"column:kind;index"`
	Attrs     datatypes.JSON `gorm:"column:attrs"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (NodeDocument) TableName() string { return "nodes" }

const sqlInsertBatch = 500

type GormStore struct {
	db      *gorm.DB
	dialect string
	log     *logger.Logger
}

func OpenPostgres(dsn string, log *logger.Logger) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, perrors.StoreConnection("mirror open", "postgres", err)
	}
	return NewGormStore(db, "postgres", log)
}

func OpenSQLite(path string, log *logger.Logger) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, perrors.StoreConnection("mirror open", "sqlite", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return NewGormStore(db, "sqlite", log)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             1 * time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// NewGormStore migrates the nodes table on db and returns a store over it.
func NewGormStore(db *gorm.DB, dialect string, log *logger.Logger) (*GormStore, error) {
	if err := db.AutoMigrate(&NodeDocument{}); err != nil {
		return nil, perrors.StoreConnection("mirror migrate", dialect, err)
	}
	return &GormStore{db: db, dialect: dialect, log: log.With("store", "GormMirror", "dialect", dialect)}, nil
}

func (s *GormStore) Name() string { return s.dialect }

func (s *GormStore) UpsertNodes(ctx context.Context, nodes []domain.NodeRecord) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	// Postgres rejects an upsert that touches the same key twice in one statement.
	nodes = dedupeLastWins(nodes)
	rows := make([]NodeDocument, 0, len(nodes))
	for _, n := range nodes {
		attrs, err := attrsJSON(n.Attrs)
		if err != nil {
			return 0, perrors.MalformedInput("mirror upsert", "", fmt.Sprintf("attrs of %q", n.ID), err)
		}
		rows = append(rows, NodeDocument{ID: n.ID, Name: n.Name, Kind: n.Kind, Attrs: attrs, UpdatedAt: now})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "kind", "attrs", "updated_at"}),
		}).
		CreateInBatches(&rows, sqlInsertBatch).Error
	if err != nil {
		return 0, perrors.StoreConnection("mirror upsert", s.dialect, err)
	}
	return len(rows), nil
}

// Get reads one mirrored document; used by tests and diagnostics.
func (s *GormStore) Get(ctx context.Context, id string) (*NodeDocument, error) {
	var doc NodeDocument
	err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&doc).Error
	if err != nil {
		return nil, perrors.StoreConnection("mirror get", s.dialect, err)
	}
	if doc.ID == "" {
		return nil, nil
	}
	return &doc, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&NodeDocument{}).Count(&n).Error; err != nil {
		return 0, perrors.StoreConnection("mirror count", s.dialect, err)
	}
	return n, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func attrsJSON(attrs map[string]string) (datatypes.JSON, error) {
	if len(attrs) == 0 {
		return datatypes.JSON([]byte(`{}`)), nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
