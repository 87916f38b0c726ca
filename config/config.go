package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Store    Store
	Auth     Auth
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Store selects the persistence backend. Backend is "postgres" or "file";
// CacheFile is the snapshot path used by the file backend.
type Store struct {
	Backend   string
	CacheFile string
}

type Auth struct {
	JWTSecret     string
	AdminPassword string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORE_BACKEND", "postgres")
	viper.SetDefault("CACHE_FILE", "examdesk_cache.json")
	viper.SetDefault("ADMIN_PASSWORD", "admin123")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Store.Backend = viper.GetString("STORE_BACKEND")
	config.Store.CacheFile = viper.GetString("CACHE_FILE")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.AdminPassword = viper.GetString("ADMIN_PASSWORD")

	log.Info().Str("port", config.Server.Port).Str("backend", config.Store.Backend).Msg("Config loaded")
	return &config, nil
}
