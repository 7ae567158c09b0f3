package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wayfarer/internal/config"
	"wayfarer/internal/interfaces"
	"wayfarer/internal/models"
)

// SaveRecord is the gorm row backing one game save. The snapshot itself is
// an opaque JSON payload; phase and scene ride along as indexed metadata so
// listings never deserialize payloads.
type SaveRecord struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Phase       string    `gorm:"size:32;index"`
	SceneID     string    `gorm:"size:128"`
	Payload     []byte    `gorm:"type:json"`
	LastUpdated time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MySQLStore is the durable SaveStore backed by MySQL through gorm.
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore opens the connection pool and migrates the save table.
func NewMySQLStore(cfg config.MySQLConfig) (*MySQLStore, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime.Std())

	if err := db.AutoMigrate(&SaveRecord{}); err != nil {
		return nil, err
	}

	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn inside a transaction.
func (s *MySQLStore) WithTx(fn func(*gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// Get implements interfaces.SaveStore.
func (s *MySQLStore) Get(ctx context.Context, id string) (*models.GameSave, error) {
	var rec SaveRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interfaces.ErrSaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}

	var save models.GameSave
	if err := json.Unmarshal(rec.Payload, &save); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save %q: %w", id, err)
	}
	return &save, nil
}

// Set implements interfaces.SaveStore.
func (s *MySQLStore) Set(ctx context.Context, save *models.GameSave) error {
	payload, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("failed to marshal save %q: %w", save.ID, err)
	}
	rec := SaveRecord{
		ID:          save.ID,
		Phase:       string(save.Phase),
		SceneID:     save.SceneID,
		Payload:     payload,
		LastUpdated: save.LastUpdated,
	}
	err = s.WithTx(func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Save(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}
	return nil
}

// List implements interfaces.SaveStore.
func (s *MySQLStore) List(ctx context.Context) ([]models.SaveSummary, error) {
	var recs []SaveRecord
	err := s.db.WithContext(ctx).
		Select("id", "phase", "scene_id", "last_updated").
		Order("last_updated DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}

	summaries := make([]models.SaveSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, models.SaveSummary{
			ID:          rec.ID,
			Phase:       models.Phase(rec.Phase),
			SceneID:     rec.SceneID,
			LastUpdated: rec.LastUpdated,
		})
	}
	return summaries, nil
}

// Delete implements interfaces.SaveStore.
func (s *MySQLStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Delete(&SaveRecord{}, "id = ?", id).Error
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}
	return nil
}
