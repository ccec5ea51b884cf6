package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mactus/memcached/store"
)

// fileConfig mirrors the store.Config fields a user would plausibly
// want to override from a YAML file; zero values fall back to
// store.DefaultConfig's.
type fileConfig struct {
	MaxBytes              int64 `yaml:"maxBytes"`
	LargeChunkSize        int32 `yaml:"largeChunkSize"`
	SmallChunkSize        int32 `yaml:"smallChunkSize"`
	IncrementDelta        int64 `yaml:"incrementDelta"`
	KeyMaxLength          int32 `yaml:"keyMaxLength"`
	MaxItemSize           int32 `yaml:"maxItemSize"`
	MaxSmallChunksPerItem int32 `yaml:"maxSmallChunksPerItem"`
	LRUSearchDepth        int32 `yaml:"lruSearchDepth"`
	UpdateInterval        int64 `yaml:"updateInterval"`
	DeleteLockSeconds     int64 `yaml:"deleteLockSeconds"`
}

func loadConfig(path string) (store.Config, error) {
	cfg := store.DefaultConfig
	cfg.Clock = func() int64 { return time.Now().Unix() }
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return store.Config{}, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return store.Config{}, err
	}

	if fc.MaxBytes != 0 {
		cfg.MaxBytes = fc.MaxBytes
	}
	if fc.LargeChunkSize != 0 {
		cfg.LargeChunkSize = fc.LargeChunkSize
	}
	if fc.SmallChunkSize != 0 {
		cfg.SmallChunkSize = fc.SmallChunkSize
	}
	if fc.IncrementDelta != 0 {
		cfg.IncrementDelta = fc.IncrementDelta
	}
	if fc.KeyMaxLength != 0 {
		cfg.KeyMaxLength = fc.KeyMaxLength
	}
	if fc.MaxItemSize != 0 {
		cfg.MaxItemSize = fc.MaxItemSize
	}
	if fc.MaxSmallChunksPerItem != 0 {
		cfg.MaxSmallChunksPerItem = fc.MaxSmallChunksPerItem
	}
	if fc.LRUSearchDepth != 0 {
		cfg.LRUSearchDepth = fc.LRUSearchDepth
	}
	if fc.UpdateInterval != 0 {
		cfg.UpdateInterval = fc.UpdateInterval
	}
	if fc.DeleteLockSeconds != 0 {
		cfg.DeleteLockSeconds = fc.DeleteLockSeconds
	}
	return cfg, nil
}
