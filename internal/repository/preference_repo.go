package repository

import (
	"context"

	"github.com/yamenzk/personal-trainer/internal/models"
)

// PreferenceRepository persists what a browser would keep in local storage:
// the membership token, the last used membership id and the theme.
type PreferenceRepository struct {
	db DBTX
}

func NewPreferenceRepository(db DBTX) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*models.DevicePreferences, error) {
	query := `
		SELECT device_id, membership_token, last_login_id, theme, created_at, updated_at
		FROM device_preferences
		WHERE device_id = $1
	`
	var prefs models.DevicePreferences
	err := r.db.QueryRow(ctx, query, deviceID).Scan(
		&prefs.DeviceID,
		&prefs.MembershipToken,
		&prefs.LastLoginID,
		&prefs.Theme,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// SetMembershipToken stores or, with a nil token, clears the device token.
func (r *PreferenceRepository) SetMembershipToken(ctx context.Context, deviceID string, token *string) error {
	query := `
		INSERT INTO device_preferences (device_id, membership_token)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE
		SET membership_token = EXCLUDED.membership_token,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, deviceID, token)
	return err
}

func (r *PreferenceRepository) SetLastLoginID(ctx context.Context, deviceID, membershipID string) error {
	query := `
		INSERT INTO device_preferences (device_id, last_login_id)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE
		SET last_login_id = EXCLUDED.last_login_id,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, deviceID, membershipID)
	return err
}

func (r *PreferenceRepository) SetTheme(ctx context.Context, deviceID, theme string) error {
	query := `
		INSERT INTO device_preferences (device_id, theme)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE
		SET theme = EXCLUDED.theme,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, deviceID, theme)
	return err
}
