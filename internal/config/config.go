package config

import (
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var lock = &sync.Mutex{}
var configInstance *ConfigType

// Config returns a singleton instance of ConfigType, loading environment
// variables from a .env file if present. Thread-safe initialization via
// sync.Mutex.
func Config() *ConfigType {
	if configInstance == nil {
		lock.Lock()
		defer lock.Unlock()
		if configInstance != nil {
			return configInstance
		}
		if _, err := os.Stat(".env"); !os.IsNotExist(err) {
			logrus.Info("found .env file")
			if err := godotenv.Load(); err != nil {
				logrus.WithError(err).Fatal("can not load .env file")
			}
		} else {
			logrus.Info("no .env file found")
		}
		cfg := &ConfigType{}
		if err := env.Parse(cfg); err != nil {
			panic(err)
		}
		logrus.Infof("config loaded: %+v", cfg)
		configInstance = cfg
	}
	return configInstance
}
