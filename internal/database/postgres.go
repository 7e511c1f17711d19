package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"inmuebles-portal/internal/config"
	"inmuebles-portal/internal/models"
)

// PostgresStore persists the catalog in PostgreSQL through database/sql.
type PostgresStore struct {
	conn *sql.DB
}

func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.User, cfg.Password, cfg.Database, sslMode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{conn: conn}, nil
}

func (s *PostgresStore) Close() error {
	return s.conn.Close()
}

// InitSchema creates the catalog tables when they do not exist.
func (s *PostgresStore) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		operation VARCHAR(20),
		type VARCHAR(30),
		price DECIMAL(14, 2),
		currency VARCHAR(3),
		bedrooms INTEGER,
		bathrooms INTEGER,
		parking INTEGER,
		built_area DECIMAL(10, 2),
		land_area DECIMAL(10, 2),
		state VARCHAR(100),
		state_slug VARCHAR(100),
		municipality VARCHAR(150),
		municipality_slug VARCHAR(150),
		neighborhood VARCHAR(150),
		neighborhood_slug VARCHAR(150),
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		views INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_properties_operation ON properties(operation);
	CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price);
	CREATE INDEX IF NOT EXISTS idx_properties_municipality_slug ON properties(municipality_slug);
	CREATE INDEX IF NOT EXISTS idx_properties_neighborhood_slug ON properties(neighborhood_slug);

	CREATE TABLE IF NOT EXISTS leads (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		email VARCHAR(200),
		phone VARCHAR(30),
		message TEXT,
		property_id BIGINT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`
	_, err := s.conn.Exec(query)
	return err
}

// SaveProperty inserts a listing, or updates it when the id is set.
func (s *PostgresStore) SaveProperty(p *models.Property) error {
	if p.Status == "" {
		p.Status = models.PropertyStatusActive
	}
	if p.ID == 0 {
		return s.conn.QueryRow(`
		INSERT INTO properties (
			title, description, operation, type, price, currency,
			bedrooms, bathrooms, parking, built_area, land_area,
			state, state_slug, municipality, municipality_slug,
			neighborhood, neighborhood_slug, lat, lng, views, status
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING id`,
			p.Title, p.Description, p.Operation, p.Type, p.Price, p.Currency,
			p.Bedrooms, p.Bathrooms, p.Parking, p.BuiltArea, p.LandArea,
			p.State, p.StateSlug, p.Municipality, p.MunicipalitySlug,
			p.Neighborhood, p.NeighborhoodSlug, p.Lat, p.Lng, p.Views, p.Status,
		).Scan(&p.ID)
	}
	_, err := s.conn.Exec(`
	UPDATE properties SET
		title=$2, description=$3, operation=$4, type=$5, price=$6, currency=$7,
		bedrooms=$8, bathrooms=$9, parking=$10, built_area=$11, land_area=$12,
		state=$13, state_slug=$14, municipality=$15, municipality_slug=$16,
		neighborhood=$17, neighborhood_slug=$18, lat=$19, lng=$20, views=$21,
		status=$22, updated_at=NOW()
	WHERE id=$1`,
		p.ID, p.Title, p.Description, p.Operation, p.Type, p.Price, p.Currency,
		p.Bedrooms, p.Bathrooms, p.Parking, p.BuiltArea, p.LandArea,
		p.State, p.StateSlug, p.Municipality, p.MunicipalitySlug,
		p.Neighborhood, p.NeighborhoodSlug, p.Lat, p.Lng, p.Views, p.Status,
	)
	return err
}

// ListProperties returns all active listings ordered by id.
func (s *PostgresStore) ListProperties() ([]models.Property, error) {
	rows, err := s.conn.Query(`
	SELECT id, title, description, operation, type, price, currency,
		bedrooms, bathrooms, parking, built_area, land_area,
		state, state_slug, municipality, municipality_slug,
		neighborhood, neighborhood_slug, lat, lng, views, status,
		created_at, updated_at
	FROM properties
	WHERE status = 'active'
	ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		var description, operation, ptype, currency sql.NullString
		var state, stateSlug, municipality, municipalitySlug sql.NullString
		var neighborhood, neighborhoodSlug sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Title, &description, &operation, &ptype, &p.Price, &currency,
			&p.Bedrooms, &p.Bathrooms, &p.Parking, &p.BuiltArea, &p.LandArea,
			&state, &stateSlug, &municipality, &municipalitySlug,
			&neighborhood, &neighborhoodSlug, &p.Lat, &p.Lng, &p.Views, &p.Status,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Description = description.String
		p.Operation = operation.String
		p.Type = ptype.String
		p.Currency = currency.String
		p.State = state.String
		p.StateSlug = stateSlug.String
		p.Municipality = municipality.String
		p.MunicipalitySlug = municipalitySlug.String
		p.Neighborhood = neighborhood.String
		p.NeighborhoodSlug = neighborhoodSlug.String
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// SaveLead stores a captured contact request.
func (s *PostgresStore) SaveLead(l *models.Lead) error {
	return s.conn.QueryRow(`
	INSERT INTO leads (name, email, phone, message, property_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`,
		l.Name, l.Email, l.Phone, l.Message, l.PropertyID,
	).Scan(&l.ID)
}
