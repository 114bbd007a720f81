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
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/venvctl/venvctl/pkg/util"
)

// Venv addresses an isolated Python environment directory. The internal
// layout belongs to `python -m venv`; Venv only knows where the tool
// binaries land on each platform.
type Venv struct {
	Root string
}

func NewVenv(workDir, name string) *Venv {
	if filepath.IsAbs(name) {
		return &Venv{Root: name}
	}
	return &Venv{Root: filepath.Join(workDir, name)}
}

func (v *Venv) Exists() bool {
	return util.DirExists(v.Root)
}

func (v *Venv) BinDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(v.Root, "Scripts")
	}
	return filepath.Join(v.Root, "bin")
}

func (v *Venv) Python() string {
	return filepath.Join(v.BinDir(), exeName("python"))
}

func (v *Venv) Pip() string {
	return filepath.Join(v.BinDir(), exeName("pip"))
}

// PipVersion answers the env pip's own version line, which doubles as a
// liveness probe for the environment.
func (v *Venv) PipVersion(ctx context.Context, r *Runner) (string, error) {
	out, err := r.Run(ctx, nil, v.Pip(), "--version")
	if err != nil {
		return "", errors.Wrap(err, "querying pip version")
	}
	return strings.TrimSpace(string(out)), nil
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
