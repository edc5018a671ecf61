package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	RoundCount               int
	SecondsPerRound          int
	MaxPlayers               int
	AllowSpectators          bool
	HeartbeatSeconds         int
	RoomTTLMinutes           int
	YearPenaltyPerYear       int
	DistancePenaltyPerMile   float64
	TimeBonusPerSecond       int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		RoundCount:               5,
		SecondsPerRound:          60,
		MaxPlayers:               8,
		AllowSpectators:          true,
		HeartbeatSeconds:         30,
		RoomTTLMinutes:           120,
		YearPenaltyPerYear:       50,
		DistancePenaltyPerMile:   2,
		TimeBonusPerSecond:       10,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("ROUND_COUNT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoundCount = value
		}
	}
	if raw := os.Getenv("ROUND_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.SecondsPerRound = value
		}
	}
	if raw := os.Getenv("MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 1 {
			cfg.MaxPlayers = value
		}
	}
	if raw := os.Getenv("ALLOW_SPECTATORS"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.AllowSpectators = value
		}
	}
	if raw := os.Getenv("HEARTBEAT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.HeartbeatSeconds = value
		}
	}
	if raw := os.Getenv("ROOM_TTL_MINUTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoomTTLMinutes = value
		}
	}
	if raw := os.Getenv("YEAR_PENALTY_PER_YEAR"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.YearPenaltyPerYear = value
		}
	}
	if raw := os.Getenv("DISTANCE_PENALTY_PER_MILE"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.DistancePenaltyPerMile = value
		}
	}
	if raw := os.Getenv("TIME_BONUS_PER_SECOND"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.TimeBonusPerSecond = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
