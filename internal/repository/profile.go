package repository

import (
	"context"
	"errors"
	"fmt"

	"hangout-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles database operations for profiles and presence
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetProfile retrieves a profile by ID
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, user_name, first_name, last_name, avatar_url, bio,
		       latitude, longitude, is_available, is_public, last_seen_at, created_at
		FROM profiles
		WHERE id = $1
	`
	var p models.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserName, &p.FirstName, &p.LastName, &p.AvatarURL, &p.Bio,
		&p.Latitude, &p.Longitude, &p.IsAvailable, &p.IsPublic, &p.LastSeenAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// GetPresence retrieves the presence slice of a profile
func (r *ProfileRepository) GetPresence(ctx context.Context, userID string) (*models.UserPresence, error) {
	query := `
		SELECT id, latitude, longitude, is_available, is_public, last_seen_at
		FROM profiles
		WHERE id = $1
	`
	var p models.UserPresence
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Latitude, &p.Longitude, &p.IsAvailable, &p.IsPublic, &p.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}
	return &p, nil
}

// GetDisplayInfo retrieves the public display fields of a profile
func (r *ProfileRepository) GetDisplayInfo(ctx context.Context, userID string) (models.DisplayInfo, error) {
	query := `
		SELECT id, user_name, first_name, last_name, avatar_url
		FROM profiles
		WHERE id = $1
	`
	var info models.DisplayInfo
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&info.ID, &info.UserName, &info.FirstName, &info.LastName, &info.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DisplayInfo{}, models.ErrUserNotFound
		}
		return models.DisplayInfo{}, fmt.Errorf("failed to get display info: %w", err)
	}
	return info, nil
}

// UpdateLocation overwrites a profile's coordinates and refreshes
// last_seen_at. Availability changes only when isAvailable is non-nil.
func (r *ProfileRepository) UpdateLocation(ctx context.Context, userID string, lat, lon float64, isAvailable *bool) error {
	query := `
		UPDATE profiles
		SET latitude = $1,
		    longitude = $2,
		    is_available = COALESCE($3, is_available),
		    last_seen_at = now()
		WHERE id = $4
	`
	result, err := r.db.Exec(ctx, query, lat, lon, isAvailable, userID)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// ListNearbyCandidates retrieves every visible candidate for a nearby query:
// public, available, with reported coordinates, excluding the origin user.
// Distance filtering and ordering happen in the caller.
func (r *ProfileRepository) ListNearbyCandidates(ctx context.Context, excludeID string) ([]models.NearbyUser, error) {
	query := `
		SELECT id, user_name, first_name, last_name, avatar_url, bio, latitude, longitude
		FROM profiles
		WHERE latitude IS NOT NULL
		  AND longitude IS NOT NULL
		  AND is_available = true
		  AND is_public = true
		  AND id != $1
	`
	rows, err := r.db.Query(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nearby candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.NearbyUser
	for rows.Next() {
		var c models.NearbyUser
		err := rows.Scan(
			&c.ID, &c.UserName, &c.FirstName, &c.LastName,
			&c.AvatarURL, &c.Bio, &c.Latitude, &c.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return candidates, nil
}
