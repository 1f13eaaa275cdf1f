package database

import "elfatih/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.PostSection{},
		&models.PostFeedback{},
		&models.Device{},
	}
}
