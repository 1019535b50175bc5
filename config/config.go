package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is an interface that represents a source from which application configuration can be loaded.
type Config interface {
	LoadConfig(c any) error
	Check() error
}

// Load first ensures that the config system valid and accessible. Then it loads the config into c.
func Load(cs Config, c any) error {
	if err := cs.Check(); err != nil {
		return err
	}
	return cs.LoadConfig(c)
}

// File

type File struct {
	ConfigFilePath string
}

func (f *File) Check() error {
	if f.ConfigFilePath == "" {
		return fmt.Errorf("configFilePath cannot be empty")
	}
	info, err := os.Stat(f.ConfigFilePath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("config file %s is a directory", f.ConfigFilePath)
	}
	return nil
}

func newFile(configFilePath string) (*File, error) {
	file := &File{ConfigFilePath: configFilePath}

	if err := file.Check(); err != nil {
		return nil, err
	}

	return file, nil
}

// LoadConfig decodes the JSON file into appConfig. Fields absent from the
// file keep whatever value appConfig already holds.
func (f *File) LoadConfig(appConfig any) error {
	file, err := os.Open(f.ConfigFilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	return decoder.Decode(appConfig)
}
