/*
 *     Copyright 2023 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dfpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		options func(dir string) []Option
		expect  func(t *testing.T, dir string, d Dfpath, err error)
	}{
		{
			name: "new dfpath",
			options: func(dir string) []Option {
				return []Option{
					WithWorkHome(filepath.Join(dir, "home")),
					WithLogDir(filepath.Join(dir, "logs")),
					WithDataDir(filepath.Join(dir, "data")),
				}
			},
			expect: func(t *testing.T, dir string, d Dfpath, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(filepath.Join(dir, "home"), d.WorkHome())
				assert.Equal(DefaultWorkHomeMode, d.WorkHomeMode())
				assert.Equal(filepath.Join(dir, "logs"), d.LogDir())
				assert.Equal(filepath.Join(dir, "data"), d.DataDir())
				assert.Equal(DefaultDataDirMode, d.DataDirMode())
				assert.DirExists(d.WorkHome())
				assert.DirExists(d.LogDir())
				assert.DirExists(d.DataDir())
			},
		},
		{
			name: "new dfpath by modes",
			options: func(dir string) []Option {
				return []Option{
					WithWorkHome(filepath.Join(dir, "home")),
					WithWorkHomeMode(os.FileMode(0750)),
					WithLogDir(filepath.Join(dir, "logs")),
					WithDataDir(filepath.Join(dir, "data")),
					WithDataDirMode(os.FileMode(0750)),
				}
			},
			expect: func(t *testing.T, dir string, d Dfpath, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(os.FileMode(0750), d.WorkHomeMode())
				assert.Equal(os.FileMode(0750), d.DataDirMode())
			},
		},
		{
			name: "new dfpath failed",
			options: func(dir string) []Option {
				file := filepath.Join(dir, "file")
				if err := os.WriteFile(file, []byte{}, 0600); err != nil {
					t.Fatal(err)
				}

				return []Option{
					WithWorkHome(filepath.Join(dir, "home")),
					WithLogDir(filepath.Join(file, "logs")),
					WithDataDir(filepath.Join(file, "data")),
				}
			},
			expect: func(t *testing.T, dir string, d Dfpath, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Nil(d)

				merr, ok := err.(*multierror.Error)
				assert.True(ok)
				assert.Len(merr.Errors, 2)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			d, err := New(tc.options(dir)...)
			tc.expect(t, dir, d, err)
		})
	}
}
