package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CatalogRepo reads the destination and offer reference tables.
// The catalog is loaded once at startup and never written by the application.
type CatalogRepo interface {
	// Load returns the full catalog. Destinations are ordered by position,
	// then name; offers by type and position.
	Load(ctx context.Context) (domain.Catalog, error)

	// AddDestination inserts a destination and its photos. Used to seed
	// reference data and by integration tests.
	AddDestination(ctx context.Context, d domain.Destination) error

	// AddOffer appends an offer template to the list for t.
	AddOffer(ctx context.Context, t domain.WaypointType, o domain.OfferTemplate) error

	// Seed writes every destination and then the offers of each type in
	// domain.WaypointTypes order, all in one transaction. On error nothing
	// is stored.
	Seed(ctx context.Context, dests []domain.Destination, offers map[domain.WaypointType][]domain.OfferTemplate) error
}

// pgCatalogRepo is the Postgres implementation of CatalogRepo.
type pgCatalogRepo struct {
	db db
}

// NewCatalogRepo constructs a CatalogRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCatalogRepo(db db) CatalogRepo {
	return &pgCatalogRepo{db: db}
}

// Load reads destinations, their photos, and offers in three queries.
func (r *pgCatalogRepo) Load(ctx context.Context) (domain.Catalog, error) {
	dests, err := r.loadDestinations(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("repo.CatalogRepo.Load: %w", err)
	}
	if err := r.loadPhotos(ctx, dests); err != nil {
		return domain.Catalog{}, fmt.Errorf("repo.CatalogRepo.Load: %w", err)
	}
	offers, err := r.loadOffers(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("repo.CatalogRepo.Load: %w", err)
	}
	return domain.NewCatalog(dests, offers), nil
}

func (r *pgCatalogRepo) loadDestinations(ctx context.Context) ([]domain.Destination, error) {
	const q = `
		SELECT name, description
		FROM destinations
		ORDER BY position, name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("destinations: %w", err)
	}
	defer rows.Close()

	var dests []domain.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("destinations: scan: %w", err)
		}
		dests = append(dests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("destinations: rows: %w", err)
	}
	return dests, nil
}

// loadPhotos attaches photos to dests in place.
func (r *pgCatalogRepo) loadPhotos(ctx context.Context, dests []domain.Destination) error {
	const q = `
		SELECT destination_name, src, caption
		FROM destination_photos
		ORDER BY destination_name, position`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("photos: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int, len(dests))
	for i, d := range dests {
		index[d.Name] = i
	}
	for rows.Next() {
		var (
			name    string
			p       domain.Photo
			caption pgtype.Text
		)
		if err := rows.Scan(&name, &p.Src, &caption); err != nil {
			return fmt.Errorf("photos: scan: %w", err)
		}
		p.Caption = caption.String
		if i, ok := index[name]; ok {
			dests[i].Photos = append(dests[i].Photos, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("photos: rows: %w", err)
	}
	return nil
}

func (r *pgCatalogRepo) loadOffers(ctx context.Context) (map[domain.WaypointType][]domain.OfferTemplate, error) {
	const q = `
		SELECT waypoint_type, title, price
		FROM offers
		ORDER BY waypoint_type, position`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("offers: %w", err)
	}
	defer rows.Close()

	offers := make(map[domain.WaypointType][]domain.OfferTemplate)
	for rows.Next() {
		var (
			t string
			o domain.OfferTemplate
		)
		if err := rows.Scan(&t, &o.Title, &o.Price); err != nil {
			return nil, fmt.Errorf("offers: scan: %w", err)
		}
		wt := domain.WaypointType(t)
		offers[wt] = append(offers[wt], o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("offers: rows: %w", err)
	}
	return offers, nil
}

// AddDestination inserts the destination row, then one row per photo.
// Position is assigned after the current last destination.
func (r *pgCatalogRepo) AddDestination(ctx context.Context, d domain.Destination) error {
	const q = `
		INSERT INTO destinations (name, description, position)
		VALUES (@name, @description, (SELECT COALESCE(MAX(position), 0) + 1 FROM destinations))`

	args := pgx.NamedArgs{
		"name":        d.Name,
		"description": d.Description,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.CatalogRepo.AddDestination: %w", err)
	}

	const pq = `
		INSERT INTO destination_photos (destination_name, position, src, caption)
		VALUES (@name, @position, @src, @caption)`

	for i, p := range d.Photos {
		args := pgx.NamedArgs{
			"name":     d.Name,
			"position": i + 1,
			"src":      p.Src,
			"caption":  p.Caption,
		}
		if _, err := r.db.Exec(ctx, pq, args); err != nil {
			return fmt.Errorf("repo.CatalogRepo.AddDestination: photo %d: %w", i, err)
		}
	}
	return nil
}

// AddOffer appends o after the last offer already stored for t.
func (r *pgCatalogRepo) AddOffer(ctx context.Context, t domain.WaypointType, o domain.OfferTemplate) error {
	const q = `
		INSERT INTO offers (waypoint_type, position, title, price)
		VALUES (@type, (SELECT COALESCE(MAX(position), 0) + 1 FROM offers WHERE waypoint_type = @type), @title, @price)`

	args := pgx.NamedArgs{
		"type":  string(t),
		"title": o.Title,
		"price": o.Price,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.CatalogRepo.AddOffer: %w", err)
	}
	return nil
}

func (r *pgCatalogRepo) Seed(ctx context.Context, dests []domain.Destination, offers map[domain.WaypointType][]domain.OfferTemplate) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		txr := &pgCatalogRepo{db: tx}
		for _, d := range dests {
			if err := txr.AddDestination(ctx, d); err != nil {
				return err
			}
		}
		for _, t := range domain.WaypointTypes {
			for _, o := range offers[t] {
				if err := txr.AddOffer(ctx, t, o); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.CatalogRepo.Seed: %w", err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDestination maps a (name, description) row. A NULL description
// becomes the empty string.
func scanDestination(s scanner) (domain.Destination, error) {
	var (
		d    domain.Destination
		desc pgtype.Text
	)
	if err := s.Scan(&d.Name, &desc); err != nil {
		return domain.Destination{}, err
	}
	d.Description = desc.String
	return d, nil
}
