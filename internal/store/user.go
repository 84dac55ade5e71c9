package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kilimobot/kilimobot/internal/config"
)

// ErrUserNotFound is returned by lookups that require an existing user.
var ErrUserNotFound = errors.New("user not found")

// User is a farmer profile keyed by a phone-like identity. The identity is
// immutable after creation; everything else is updated last-write-wins,
// with crops and livestock merged as sets.
type User struct {
	Identity   string          `json:"identity"`
	Name       string          `json:"name,omitempty"`
	County     string          `json:"county,omitempty"`
	Language   config.Language `json:"language"`
	Crops      []string        `json:"crops"`
	Livestock  []string        `json:"livestock"`
	SoilType   string          `json:"soil_type,omitempty"`
	FarmStage  string          `json:"farm_stage,omitempty"`
	Latitude   *float64        `json:"latitude,omitempty"`
	Longitude  *float64        `json:"longitude,omitempty"`
	LocationAt *time.Time      `json:"location_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProfileUpdate carries the profile signals extracted from an inbound
// message or an explicit API call. Empty fields leave the stored value
// unchanged; crops and livestock are unioned into the stored sets, so
// applying the same update twice is a no-op.
type ProfileUpdate struct {
	Name      string
	County    string
	Language  config.Language
	SoilType  string
	FarmStage string
	Crops     []string
	Livestock []string
}

// GetOrCreateUser returns the user for the identity, creating a fresh
// profile with the default language on first contact.
func (s *Store) GetOrCreateUser(ctx context.Context, identity string) (*User, error) {
	if identity == "" {
		return nil, fmt.Errorf("getting user: empty identity")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (identity, language) VALUES (?, ?)
		ON CONFLICT(identity) DO NOTHING`,
		identity, string(config.LanguageEnglish))
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return s.GetUser(ctx, identity)
}

// GetUser returns the user for the identity, or ErrUserNotFound.
func (s *Store) GetUser(ctx context.Context, identity string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT identity, name, county, language, crops, livestock,
		       soil_type, farm_stage, latitude, longitude, location_at,
		       created_at, updated_at
		FROM users WHERE identity = ?`, identity)

	var (
		u                User
		lang             string
		crops, livestock string
		lat, lon         sql.NullFloat64
		locAt            sql.NullString
		created, updated string
	)
	err := row.Scan(&u.Identity, &u.Name, &u.County, &lang, &crops, &livestock,
		&u.SoilType, &u.FarmStage, &lat, &lon, &locAt, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Language = config.Language(lang)
	if err := json.Unmarshal([]byte(crops), &u.Crops); err != nil {
		return nil, fmt.Errorf("decoding crops: %w", err)
	}
	if err := json.Unmarshal([]byte(livestock), &u.Livestock); err != nil {
		return nil, fmt.Errorf("decoding livestock: %w", err)
	}
	if lat.Valid && lon.Valid {
		u.Latitude, u.Longitude = &lat.Float64, &lon.Float64
	}
	if locAt.Valid {
		if t, err := ParseTimestamp(locAt.String); err == nil {
			u.LocationAt = &t
		}
	}
	u.CreatedAt = ParseTimestampOr(created, time.Time{})
	u.UpdatedAt = ParseTimestampOr(updated, time.Time{})
	return &u, nil
}

// UpdateProfile merges the update into the stored profile. Scalar fields
// are overwritten only when the update carries a value; crops and livestock
// are set-unioned.
func (s *Store) UpdateProfile(ctx context.Context, identity string, up ProfileUpdate) (*User, error) {
	u, err := s.GetUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	if up.Name != "" {
		u.Name = up.Name
	}
	if up.County != "" {
		u.County = up.County
	}
	if up.Language != "" {
		u.Language = up.Language
	}
	if up.SoilType != "" {
		u.SoilType = up.SoilType
	}
	if up.FarmStage != "" {
		u.FarmStage = up.FarmStage
	}
	u.Crops = union(u.Crops, up.Crops)
	u.Livestock = union(u.Livestock, up.Livestock)

	crops, err := json.Marshal(u.Crops)
	if err != nil {
		return nil, fmt.Errorf("encoding crops: %w", err)
	}
	livestock, err := json.Marshal(u.Livestock)
	if err != nil {
		return nil, fmt.Errorf("encoding livestock: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, county = ?, language = ?, crops = ?,
		       livestock = ?, soil_type = ?, farm_stage = ?,
		       updated_at = datetime('now')
		WHERE identity = ?`,
		u.Name, u.County, string(u.Language), string(crops), string(livestock),
		u.SoilType, u.FarmStage, identity)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return u, nil
}

// UpdateLocation records the user's last known coordinates and, when known,
// the county resolved from them. Returns ErrUserNotFound for an unknown
// identity.
func (s *Store) UpdateLocation(ctx context.Context, identity string, lat, lon float64, county string) error {
	query := `
		UPDATE users SET latitude = ?, longitude = ?,
		       location_at = datetime('now'), updated_at = datetime('now')`
	args := []any{lat, lon}
	if county != "" {
		query += ", county = ?"
		args = append(args, county)
	}
	query += " WHERE identity = ?"
	args = append(args, identity)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating location: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating location: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns every user, for batch jobs like alert delivery.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identity FROM users ORDER BY identity`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var identities []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		identities = append(identities, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}

	out := make([]User, 0, len(identities))
	for _, id := range identities {
		u, err := s.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

func union(have, add []string) []string {
	if len(add) == 0 {
		return have
	}
	seen := make(map[string]bool, len(have)+len(add))
	out := make([]string, 0, len(have)+len(add))
	for _, lists := range [][]string{have, add} {
		for _, v := range lists {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
