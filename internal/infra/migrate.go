package infra

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// schemaMigration is one applied entry of the append-only change log.
type schemaMigration struct {
	Version   string `gorm:"primaryKey;type:varchar(255)"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string { return "schema_migrations" }

type migrationFile struct {
	version string
	up      string
	down    string
}

// loadMigrations pairs NNNNNN_name.up.sql / .down.sql files by version,
// sorted ascending.
func loadMigrations() ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}
	byVersion := map[string]*migrationFile{}
	for _, e := range entries {
		name := e.Name()
		var version, direction string
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			version, direction = strings.TrimSuffix(name, ".up.sql"), "up"
		case strings.HasSuffix(name, ".down.sql"):
			version, direction = strings.TrimSuffix(name, ".down.sql"), "down"
		default:
			continue
		}
		body, err := fs.ReadFile(migrationFS, "migrations/"+name)
		if err != nil {
			return nil, err
		}
		m, ok := byVersion[version]
		if !ok {
			m = &migrationFile{version: version}
			byVersion[version] = m
		}
		if direction == "up" {
			m.up = string(body)
		} else {
			m.down = string(body)
		}
	}

	out := make([]migrationFile, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" {
			return nil, fmt.Errorf("migration %s has no up file", m.version)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// Migrate applies every pending up migration, each in its own transaction.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("schema_migrations: %w", err)
	}
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	var applied []string
	if err := db.Model(&schemaMigration{}).Pluck("version", &applied).Error; err != nil {
		return err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.up).Error; err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Version: m.version, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", m.version, err)
		}
		log.Info().Str("version", m.version).Msg("migration applied")
	}
	return nil
}

// Rollback reverts the most recently applied migration. It returns the
// reverted version, or "" when nothing is applied.
func Rollback(db *gorm.DB) (string, error) {
	var last schemaMigration
	res := db.Order("version DESC").Limit(1).Find(&last)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", nil
	}

	migrations, err := loadMigrations()
	if err != nil {
		return "", err
	}
	for _, m := range migrations {
		if m.version != last.Version {
			continue
		}
		if m.down == "" {
			return "", fmt.Errorf("migration %s has no down file", m.version)
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.down).Error; err != nil {
				return err
			}
			return tx.Delete(&schemaMigration{Version: m.version}).Error
		})
		return m.version, err
	}
	return "", fmt.Errorf("applied migration %s not found in embedded files", last.Version)
}
