// Package prefs stores per-user settings in keyed storage. Updates are
// partial: nil request fields keep the current value.
package prefs

import (
	"time"

	"github.com/eduapps/quizvault/kv"
	"github.com/eduapps/quizvault/models"
	"github.com/eduapps/quizvault/utils"
)

const prefsKeyPrefix = "user_prefs:"

type Store struct {
	store *kv.Store
}

func NewStore(store *kv.Store) *Store {
	return &Store{store: store}
}

// Get returns the user's preferences, creating and persisting defaults
// for a user seen for the first time.
func (s *Store) Get(userID string) *models.UserPreferences {
	var p models.UserPreferences
	if s.store.Get(prefsKeyPrefix+userID, &p) {
		return &p
	}
	utils.LogDebug("No preferences found for user %s, creating defaults", userID)
	defaults := models.GetDefaultPreferences(userID)
	s.store.Set(prefsKeyPrefix+userID, defaults)
	return defaults
}

// Update overlays the non-nil fields of req onto the current record and
// persists the result.
func (s *Store) Update(userID string, req models.UserPreferencesRequest) *models.UserPreferences {
	current := s.Get(userID)

	if req.Theme != nil {
		current.Theme = *req.Theme
	}
	if req.Language != nil {
		current.Language = *req.Language
	}
	if req.AutoSaveEnabled != nil {
		current.AutoSaveEnabled = *req.AutoSaveEnabled
	}
	if req.AutoSaveIntervalSeconds != nil {
		current.AutoSaveIntervalSeconds = *req.AutoSaveIntervalSeconds
	}
	if req.FontSize != nil {
		current.FontSize = *req.FontSize
	}
	if req.HighContrast != nil {
		current.HighContrast = *req.HighContrast
	}
	current.UpdatedAt = time.Now()

	s.store.Set(prefsKeyPrefix+userID, current)
	utils.LogDebug("Updated preferences for user %s", userID)
	return current
}

// Reset removes the stored record so the next Get returns defaults.
func (s *Store) Reset(userID string) {
	s.store.Delete(prefsKeyPrefix + userID)
}
