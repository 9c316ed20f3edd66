package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"pointsd/internal/structures"
	"strings"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "POINTSD_LOG_LEVEL")
	viper.BindEnv("points.dailyCap", "POINTSD_DAILY_CAP")
	viper.BindEnv("points.tickInterval", "POINTSD_TICK_INTERVAL")
	viper.BindEnv("points.retentionDays", "POINTSD_RETENTION_DAYS")
	viper.BindEnv("persistence.filePath", "POINTSD_LEDGER_FILE")
	viper.BindEnv("cache.enabled", "POINTSD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "POINTSD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	if conf.Points.LeaderboardLimit <= 0 {
		conf.Points.LeaderboardLimit = 10
	}

	conf.AppName = "PresencePointsDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
