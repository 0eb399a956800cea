package config

import (
	"os"
	"path/filepath"
)

const (
	dataFolderVar = "DATA_FOLDER"
	storeFileVar  = "STORE_FILE"
)

type StorageConfig interface {
	GetDataFolder() string
	GetStoreFile() string
}

type Storage struct {
	values fileValues
}

var _ StorageConfig = Storage{}

func (s Storage) GetDataFolder() string {
	return s.values.get(dataFolderVar, defaultDataFolder())
}

func (s Storage) GetStoreFile() string {
	return s.values.get(storeFileVar, filepath.Join(s.GetDataFolder(), "storage.json"))
}

func defaultDataFolder() string {
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "./data"
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "bidagri")
}
