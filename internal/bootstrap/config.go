package bootstrap

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	ProfileDir  string `mapstructure:"PROFILE_DIR"`
	ModelPath   string `mapstructure:"MODEL_PATH"`
	RedisUrl    string `mapstructure:"REDIS_URL"`
	MongoUri    string `mapstructure:"MONGO_URI"`
	IsLocalCors bool   `mapstructure:"LOCAL_CORS"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_PORT", "5410")
	viper.SetDefault("PROFILE_DIR", "profiles")
	viper.SetDefault("MODEL_PATH", "model.json")

	viper.AutomaticEnv()

	// A missing .env is fine: defaults plus process environment apply.
	if err := viper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
