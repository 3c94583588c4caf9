package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	JWT      JWT
	LevelUp  LevelUp
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
	SSLMode  string
}
type Redis struct {
	Addr     string
	Password string
	DB       int
}
type JWT struct {
	Secret string
}

// LevelUp tunes the staged quiz flow. PassThreshold compares against the
// cumulative per-difficulty accuracy, not the single attempt's score.
type LevelUp struct {
	QuestionCount int
	PassThreshold int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("LEVELUP_QUESTION_COUNT", 10)
	viper.SetDefault("LEVELUP_PASS_THRESHOLD", 70)

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.JWT.Secret = viper.GetString("JWT_SECRET")

	config.LevelUp.QuestionCount = viper.GetInt("LEVELUP_QUESTION_COUNT")
	config.LevelUp.PassThreshold = viper.GetInt("LEVELUP_PASS_THRESHOLD")

	log.Info().Str("port", config.Server.Port).Str("db", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
