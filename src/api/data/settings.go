package data

import (
	"context"

	"gorm.io/gorm"
)

// Setting is one row of the settings table; active rows override environment configuration.
type Setting struct {
	ID     uint8  `gorm:"primaryKey"`
	Name   string `gorm:"size:32;not null;uniqueIndex"`
	Value  string `gorm:"type:text;not null"`
	Active uint8  `gorm:"not null"`
}

// LoadSettings returns the active settings by name.
func LoadSettings(ctx context.Context, db *gorm.DB) (map[string]string, error) {
	var rows []Setting
	if err := db.WithContext(ctx).Where("active = ?", 1).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Name] = s.Value
	}
	return out, nil
}
