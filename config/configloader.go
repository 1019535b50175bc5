package config

import (
	"fmt"
)

func LoadConfigFromFile(filePath string, appConfig any) error {
	configSource, err := newFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to create File config source: %w", err)
	}

	err = Load(configSource, appConfig)
	if err != nil {
		return fmt.Errorf("error loading config from %s: %w", filePath, err)
	}

	return nil
}
