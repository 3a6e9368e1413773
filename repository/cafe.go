package repository

import (
	"context"
	"fmt"

	"cafe-directory/models"

	"github.com/jmoiron/sqlx"
)

const cafeColumns = `id, name, map_url, img_url, location, seats,
	has_toilet, has_wifi, has_sockets, rating, COALESCE(coffee_price, '') AS coffee_price`

// CafeRepository stores cafés in the cafes table.
type CafeRepository struct {
	db *sqlx.DB
}

// NewCafeRepository creates a new café repository
func NewCafeRepository(db *sqlx.DB) *CafeRepository {
	return &CafeRepository{db: db}
}

// GetByID returns ErrNotFound when no café has the id.
func (r *CafeRepository) GetByID(ctx context.Context, id int) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.db.GetContext(ctx, &cafe, "SELECT "+cafeColumns+" FROM cafes WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get cafe %d: %w", id, translate(err))
	}
	return &cafe, nil
}

// Insert stores the café and sets its assigned id.
func (r *CafeRepository) Insert(ctx context.Context, cafe *models.Cafe) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cafes (name, map_url, img_url, location, seats,
			has_toilet, has_wifi, has_sockets, rating, coffee_price)
		VALUES (:name, :map_url, :img_url, :location, :seats,
			:has_toilet, :has_wifi, :has_sockets, :rating, NULLIF(:coffee_price, ''))`, cafe)
	if err != nil {
		return fmt.Errorf("insert cafe %q: %w", cafe.Name, translate(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert cafe %q: %w", cafe.Name, err)
	}
	cafe.ID = int(id)
	return nil
}

// Update overwrites every mutable column of the café.
func (r *CafeRepository) Update(ctx context.Context, cafe *models.Cafe) error {
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE cafes SET name = :name, map_url = :map_url, img_url = :img_url,
			location = :location, seats = :seats, has_toilet = :has_toilet,
			has_wifi = :has_wifi, has_sockets = :has_sockets, rating = :rating,
			coffee_price = NULLIF(:coffee_price, '')
		WHERE id = :id`, cafe)
	if err != nil {
		return fmt.Errorf("update cafe %d: %w", cafe.ID, translate(err))
	}
	return expectOneRow(result, "update cafe", cafe.ID)
}

// Delete removes the café.
func (r *CafeRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM cafes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete cafe %d: %w", id, err)
	}
	return expectOneRow(result, "delete cafe", id)
}

// FindAll lists every café ordered by id.
func (r *CafeRepository) FindAll(ctx context.Context) ([]models.Cafe, error) {
	cafes := []models.Cafe{}
	if err := r.db.SelectContext(ctx, &cafes, "SELECT "+cafeColumns+" FROM cafes ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list cafes: %w", err)
	}
	return cafes, nil
}

// FindByLocation matches the location exactly, case included.
func (r *CafeRepository) FindByLocation(ctx context.Context, location string) ([]models.Cafe, error) {
	cafes := []models.Cafe{}
	err := r.db.SelectContext(ctx, &cafes, "SELECT "+cafeColumns+" FROM cafes WHERE location = ? ORDER BY id", location)
	if err != nil {
		return nil, fmt.Errorf("list cafes in %q: %w", location, err)
	}
	return cafes, nil
}

// DistinctLocations returns each location once, sorted.
func (r *CafeRepository) DistinctLocations(ctx context.Context) ([]string, error) {
	locations := []string{}
	if err := r.db.SelectContext(ctx, &locations, "SELECT DISTINCT location FROM cafes ORDER BY location"); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}
