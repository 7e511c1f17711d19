package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inmuebles-portal/internal/config"
	"inmuebles-portal/internal/models"
)

// GormStore persists the catalog in MySQL through GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(cfg config.MySQLConfig) (*GormStore, error) {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Database)

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
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormStore{db: db}, nil
}

// NewGormStoreFromDB wraps an existing gorm.DB, used by tests.
func NewGormStoreFromDB(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables with GORM AutoMigrate.
func (s *GormStore) InitSchema() error {
	return s.db.AutoMigrate(&models.Property{}, &models.Lead{})
}

// SaveProperty inserts or updates a listing.
func (s *GormStore) SaveProperty(p *models.Property) error {
	if p.Status == "" {
		p.Status = models.PropertyStatusActive
	}
	return s.db.Save(p).Error
}

// ListProperties returns all active listings ordered by id, the catalog
// snapshot source.
func (s *GormStore) ListProperties() ([]models.Property, error) {
	var properties []models.Property
	err := s.db.
		Where("status = ?", models.PropertyStatusActive).
		Order("id ASC").
		Find(&properties).Error
	return properties, err
}

// SaveLead stores a captured contact request.
func (s *GormStore) SaveLead(l *models.Lead) error {
	return s.db.Create(l).Error
}
