// Package database persists the property catalog and captured leads.
// Two stores exist, mirroring the deployment options: MySQL through GORM
// and PostgreSQL through database/sql. Both satisfy Store.
package database

import (
	"fmt"

	"inmuebles-portal/internal/config"
	"inmuebles-portal/internal/models"
)

// Store is the catalog persistence contract consumed by the API server.
type Store interface {
	InitSchema() error
	SaveProperty(p *models.Property) error
	// ListProperties returns all active listings, ordered by id.
	ListProperties() ([]models.Property, error)
	SaveLead(l *models.Lead) error
	Close() error
}

// Open builds the store selected by configuration. An empty type returns
// (nil, nil): the caller then serves the catalog from the JSON seed file.
func Open(cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "mysql":
		return NewGormStore(cfg.MySQL)
	case "postgres":
		return NewPostgresStore(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Type)
	}
}
