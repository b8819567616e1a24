package db

import (
	"github.com/Kirill-Alexeev/taskplanner/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	// TranslateError turns driver-specific unique violations into
	// gorm.ErrDuplicatedKey, which handlers rely on for tag and
	// membership uniqueness.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}

// Migrate creates missing tables in dependency order. Shared with tests,
// which run it against an in-memory database.
func Migrate(gdb *gorm.DB) error {
	entities := []interface{}{
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMembership{},
		&models.Tag{},
		&models.Task{},
		&models.Subtask{},
		&models.Comment{},
	}

	migrator := gdb.Migrator()

	for _, entity := range entities {
		if !migrator.HasTable(entity) {
			if err := gdb.AutoMigrate(entity); err != nil {
				return err
			}
		}
	}

	return nil
}
