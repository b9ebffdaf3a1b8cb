package config

import (
	"fmt"
	"sort"
)

var profiles = map[string]func(cfg *Config){
	"quick": func(cfg *Config) {
		cfg.Wipe.Passes = 1
		cfg.Wipe.Method = MethodZero
		cfg.Wipe.StepTickMs = 0
	},
	"standard": func(cfg *Config) {
		cfg.Wipe.Passes = 3
		cfg.Wipe.Method = MethodRandom
	},
	"paranoid": func(cfg *Config) {
		cfg.Wipe.Passes = 7
		cfg.Wipe.Method = MethodDOD5220
		cfg.Wipe.OnError = OnErrorAbort
		cfg.Wipe.ChunkSize = 8 * 1024 * 1024 // 8MB
	},
}

// ApplyProfile overrides the wipe section with a named profile.
func ApplyProfile(cfg *Config, profile string) error {
	apply, ok := profiles[profile]
	if !ok {
		return fmt.Errorf("unknown profile: %s", profile)
	}
	apply(cfg)
	return nil
}

// Profiles lists the known profile names.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
