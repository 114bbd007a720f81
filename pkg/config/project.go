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
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// ProjectConfigFile is the per-project config looked up in the working
// directory.
const ProjectConfigFile = "venvctl.toml"

var ErrInvalidProjectConfig = errors.New("invalid " + ProjectConfigFile)

// ProjectConfig describes how one project's environment is set up. Every
// field is optional; flags take precedence over file values.
type ProjectConfig struct {
	Dir          string   `toml:"dir,omitempty"`
	Python       string   `toml:"python,omitempty"`
	Packages     []string `toml:"packages,omitempty"`
	Requirements string   `toml:"requirements,omitempty"`
	Strict       bool     `toml:"strict,omitempty"`
}

// LoadProjectConfig reads filename from dir. A missing file is not an
// error; it returns (nil, nil) so callers fall through to defaults.
func LoadProjectConfig(dir, filename string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c := &ProjectConfig{}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(ErrInvalidProjectConfig, err.Error())
	}
	return c, nil
}

// SaveTo writes the config as filename in dir.
func (c *ProjectConfig) SaveTo(dir, filename string) error {
	data, err := toml.Marshal(*c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, filename), data, 0644)
}
