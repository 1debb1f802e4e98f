package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Beachman4/properview/internal/models"
)

const (
	driverName    = "sqlite3_properview"
	metersPerMile = 1609.344
)

var registerDriver sync.Once

// HaversineMiles returns the great-circle distance in miles between two
// coordinates given as decimal degrees.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := orb.Point{lon1, lat1}
	p2 := orb.Point{lon2, lat2}
	return geo.DistanceHaversine(p1, p2) / metersPerMile
}

// NewDatabase opens the SQLite database at dbPath and runs schema
// migrations. The connection is registered with a haversine_miles SQL
// function so distance predicates can run inside queries with bound
// parameters.
func NewDatabase(dbPath string) (*gorm.DB, error) {
	// Plain file paths need their parent directory to exist; URI DSNs
	// (in-memory databases) are left alone.
	if !strings.HasPrefix(dbPath, "file:") && dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	registerDriver.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("haversine_miles", HaversineMiles, true)
			},
		})
	})

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: driverName,
		DSN:        dbPath,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Agent{},
		&models.Property{},
		&models.Inquiry{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Composite index backing the geo search scan
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(address_latitude, address_longitude);
	`).Error; err != nil {
		return err
	}

	return nil
}
