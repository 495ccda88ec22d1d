package models

import "time"

// UserPreferences represents user preferences stored
type UserPreferences struct {
	UserID                  string    `json:"user_id"`
	Theme                   string    `json:"theme"` // light, dark, system
	Language                string    `json:"language"`
	AutoSaveEnabled         bool      `json:"auto_save_enabled"`
	AutoSaveIntervalSeconds int       `json:"auto_save_interval_seconds"`
	FontSize                int       `json:"font_size"`
	HighContrast            bool      `json:"high_contrast"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// UserPreferencesRequest for updating preferences. Nil fields keep the
// current value (shallow merge).
type UserPreferencesRequest struct {
	Theme                   *string `json:"theme,omitempty"`
	Language                *string `json:"language,omitempty"`
	AutoSaveEnabled         *bool   `json:"auto_save_enabled,omitempty"`
	AutoSaveIntervalSeconds *int    `json:"auto_save_interval_seconds,omitempty"`
	FontSize                *int    `json:"font_size,omitempty"`
	HighContrast            *bool   `json:"high_contrast,omitempty"`
}

// GetDefaultPreferences returns default user preferences
func GetDefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:                  userID,
		Theme:                   "system",
		Language:                "en",
		AutoSaveEnabled:         true,
		AutoSaveIntervalSeconds: 30,
		FontSize:                16,
		HighContrast:            false,
		UpdatedAt:               time.Now(),
	}
}
