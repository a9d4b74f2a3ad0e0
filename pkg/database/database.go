// Package database implements the store contract on jinzhu/gorm with the
// sqlite3 or postgres dialect.
//
// jinzhu/gorm has no context support; contexts are accepted to satisfy the
// store interfaces and only checked before multi-statement work.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

// Open connects with the given gorm dialect and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == "sqlite3" {
		// every :memory: connection is a separate database
		db.DB().SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&models.User{},
		&models.Video{},
		&models.Comment{},
		&models.Tweet{},
		&models.Like{},
		&models.Playlist{},
		&models.PlaylistVideo{},
		&models.Subscription{},
		&models.WatchEntry{},
	).Error
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.DB().PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if gorm.IsRecordNotFoundError(err) {
		return store.ErrNotFound
	}
	if isDuplicate(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

func isDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func orderBy(p query.Params) string {
	if p.Sort.Desc {
		return p.Sort.Field.Column + " desc"
	}
	return p.Sort.Field.Column + " asc"
}

// window applies sort, the id tie-breaker, skip and limit.
func window(db *gorm.DB, p query.Params) *gorm.DB {
	return db.Order(orderBy(p)).Order("id asc").Offset(p.Skip()).Limit(p.Limit)
}

// ownerSummaries loads the public profile of every id in one query.
func (s *Store) ownerSummaries(ids []string) (map[string]*models.OwnerSummary, error) {
	out := map[string]*models.OwnerSummary{}
	ids = unique(ids)
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.OwnerSummary
	err := s.db.Model(&models.User{}).
		Select("id, username, full_name, avatar").
		Where("id IN (?)", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (s *Store) videosByID(ids []string) (map[string]models.Video, error) {
	out := map[string]models.Video{}
	ids = unique(ids)
	if len(ids) == 0 {
		return out, nil
	}

	var videos []models.Video
	if err := s.db.Where("id IN (?)", ids).Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("load videos: %w", err)
	}
	for _, v := range videos {
		out[v.ID] = v
	}
	return out, nil
}

// withOwners joins owner summaries onto videos, keeping their order.
func (s *Store) withOwners(videos []models.Video) ([]models.VideoWithOwner, error) {
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.OwnerID)
	}
	owners, err := s.ownerSummaries(ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.VideoWithOwner, 0, len(videos))
	for _, v := range videos {
		out = append(out, models.VideoWithOwner{Video: v, OwnerDetails: owners[v.OwnerID]})
	}
	return out, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
