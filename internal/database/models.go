package database

import "time"

// SettingsDocument stores one serialized settings document under a name.
// The amalgamation preferences are stored under the settings file name so
// that file and database backends hold identical documents.
type SettingsDocument struct {
	Name      string    `gorm:"primaryKey;size:255" json:"name"`
	Document  string    `gorm:"type:text;not null" json:"document"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SettingsDocument) TableName() string {
	return "amalgamation_settings"
}
