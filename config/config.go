package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	App struct {
		// Port the HTTP server listens on
		Port int `env:"APP_PORT" envDefault:"8080"`

		// Environment name (dev, staging, production)
		Env string `env:"APP_ENV" envDefault:"dev"`
	}

	Database struct {
		// Path to the SQLite database file
		Path string `env:"DATABASE_PATH" envDefault:"database/properview.db"`
	}

	Auth struct {
		// Secret used to sign agent session tokens
		JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

		// How long an issued token stays valid
		TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"1440h"`
	}

	Mapbox struct {
		// Access token for the Mapbox geocoding API
		AccessToken string `env:"MAPBOX_ACCESS_TOKEN,required,notEmpty"`
	}

	Search struct {
		// Radius in miles for location-based property search
		RadiusMiles float64 `env:"SEARCH_RADIUS_MILES" envDefault:"10"`

		// Default page sizes for the public and agent listing endpoints
		PublicPageSize int `env:"PUBLIC_PAGE_SIZE" envDefault:"20"`
		AgentPageSize  int `env:"AGENT_PAGE_SIZE" envDefault:"10"`
	}

	Views struct {
		// Window during which repeat views from the same IP are ignored
		DedupTTL time.Duration `env:"VIEW_DEDUP_TTL" envDefault:"5m"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
