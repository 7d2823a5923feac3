package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server  Server
	JWT     JWT
	Logger  LoggerMode
	Limiter Limiter
}

type Server struct {
	Port        string
	Environment string
}

type JWT struct {
	Secret    string
	ExpiresIn int // hours
}

type LoggerMode struct {
	Development bool
	Level       string
}

// Limiter bounds inbound socket frames per user.
type Limiter struct {
	RPS   float64
	Burst int
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	// Env vars win over file values, e.g. JWT_SECRET overrides jwt.secret.
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Server.Port == "" {
		c.Server.Port = "4000"
	}
	if c.JWT.ExpiresIn <= 0 {
		c.JWT.ExpiresIn = 168 // 7 days, matching the token lifetime clients expect
	}
	if c.Limiter.RPS <= 0 {
		c.Limiter.RPS = 20
	}
	if c.Limiter.Burst <= 0 {
		c.Limiter.Burst = 40
	}
	return &c, nil
}
