// Copyright 2025 The venvctl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// CLIConfig holds user-wide defaults, loaded from
// ~/.venvctl/cli-config.yaml. Per-project settings and flags override it.
type CLIConfig struct {
	DefaultPython string `yaml:"default_python"`
	MinimumPython string `yaml:"minimum_python"`
	QuietPause    bool   `yaml:"quiet_pause"`
}

// LoadOrCreate loads the config file from ~/.venvctl/cli-config.yaml.
// If it doesn't exist, it'll return an empty config.
func LoadOrCreate() (*CLIConfig, error) {
	configPath, err := getConfigLocation()
	if err != nil {
		return nil, err
	}

	c := &CLIConfig{}
	if s, err := os.Stat(configPath); os.IsNotExist(err) {
		return c, nil
	} else if err != nil {
		return nil, err
	} else if s.Mode().Perm()&0022 != 0 {
		fmt.Fprintf(os.Stderr, "WARNING: config file %s should have permissions %o\n", configPath, 0644)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(content, c); err != nil {
		return nil, err
	}

	return c, nil
}

func getConfigLocation() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return path.Join(dir, ".venvctl", "cli-config.yaml"), nil
}
