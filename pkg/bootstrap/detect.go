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

package bootstrap

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/venvctl/venvctl/pkg/util"
)

type RequirementsSource string

const (
	SourceNone         RequirementsSource = ""
	SourceRequirements RequirementsSource = "requirements.txt"
	SourcePyproject    RequirementsSource = "pyproject.toml"
)

// DetectRequirementsSource determines where a project declares its
// dependencies. requirements.txt wins over pyproject.toml; a
// pyproject.toml without a [project] dependencies table is not a source.
func DetectRequirementsSource(dir string) RequirementsSource {
	if util.FileExists(dir, "requirements.txt") {
		return SourceRequirements
	}
	if util.FileExists(dir, "pyproject.toml") {
		data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
		if err != nil {
			return SourceNone
		}
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return SourceNone
		}
		if project, ok := doc["project"].(map[string]any); ok {
			if _, hasDeps := project["dependencies"]; hasDeps {
				return SourcePyproject
			}
		}
	}
	return SourceNone
}
