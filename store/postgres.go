package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"esports-arena/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore keeps every document in the kv_entries table as jsonb.
// The DB must be opened with gorm.Config{TranslateError: true} so duplicate
// inserts surface as gorm.ErrDuplicatedKey.
type PostgresStore struct {
	DB *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	_, found, err := s.GetVersioned(ctx, key, dest)
	return found, err
}

func (s *PostgresStore) GetVersioned(ctx context.Context, key string, dest interface{}) (int64, bool, error) {
	var entry models.KVEntry
	err := s.DB.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %q: %w", key, err)
	}
	if dest != nil {
		if err := json.Unmarshal(entry.Value, dest); err != nil {
			return 0, false, fmt.Errorf("decode %q: %w", key, err)
		}
	}
	return entry.Version, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	entry := models.KVEntry{Key: key, Value: data, Version: 1}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":   data,
			"version": gorm.Expr("kv_entries.version + 1"),
		}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, key string, value interface{}, expected int64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	if expected == 0 {
		entry := models.KVEntry{Key: key, Value: data, Version: 1}
		err := s.DB.WithContext(ctx).Create(&entry).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		if err != nil {
			return fmt.Errorf("create %q: %w", key, err)
		}
		return nil
	}

	res := s.DB.WithContext(ctx).Model(&models.KVEntry{}).
		Where("key = ? AND version = ?", key, expected).
		Updates(map[string]interface{}{
			"value":   data,
			"version": expected + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("swap %q: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	var entries []models.KVEntry
	err := s.DB.WithContext(ctx).
		Where("key LIKE ?", prefix+"%").
		Order("key ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", prefix, err)
	}
	docs := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		docs[i] = json.RawMessage(e.Value)
	}
	return docs, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := s.DB.WithContext(ctx).Delete(&models.KVEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
