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
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// DefaultInterpreters is tried in order when no interpreter is configured.
var DefaultInterpreters = []string{"python3", "python"}

var ErrNoInterpreter = errors.New("no Python interpreter found in PATH")

// FindInterpreter resolves the absolute path of the Python interpreter to
// bootstrap with. An explicit name or path wins over autodetection.
func FindInterpreter(r *Runner, explicit string) (string, error) {
	if explicit != "" {
		path, err := r.LookPath(explicit)
		if err != nil {
			return "", errors.Wrapf(err, "interpreter %q not found", explicit)
		}
		return path, nil
	}
	for _, name := range DefaultInterpreters {
		if path, err := r.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrNoInterpreter
}

var pythonVersionRe = regexp.MustCompile(`Python (\d+\.\d+(?:\.\d+)?)`)

// InterpreterVersion parses the `Python X.Y.Z` line printed by --version.
func InterpreterVersion(ctx context.Context, r *Runner, python string) (*semver.Version, error) {
	out, err := r.Run(ctx, nil, python, "--version")
	if err != nil {
		return nil, errors.Wrap(err, "querying interpreter version")
	}
	m := pythonVersionRe.FindStringSubmatch(string(out))
	if m == nil {
		return nil, errors.Errorf("unrecognized version output %q", strings.TrimSpace(string(out)))
	}
	return semver.NewVersion(m[1])
}

// CheckMinimumVersion gates the interpreter against a configured minimum.
// An empty minimum disables the gate.
func CheckMinimumVersion(v *semver.Version, minimum string) error {
	if minimum == "" {
		return nil
	}
	c, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		return errors.Wrapf(err, "invalid minimum version %q", minimum)
	}
	if !c.Check(v) {
		return errors.Errorf("Python %s is below the required minimum %s", v, minimum)
	}
	return nil
}
