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

//go:generate mockgen -destination mocks/storage_mock.go -source storage.go -package mocks

package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

const (
	// ReportFilePrefix is prefix of report file name.
	ReportFilePrefix = "report"

	// ModelFilePrefix is prefix of model file name.
	ModelFilePrefix = "model"

	// CSVFileExt is extension of csv file name.
	CSVFileExt = "csv"

	// JSONFileExt is extension of json file name.
	JSONFileExt = "json"
)

// Storage is the interface used for storage.
type Storage interface {
	// CreateReport appends records to the report csv file.
	CreateReport(...Record) error

	// ListReport returns all records in the report csv file.
	ListReport() ([]Record, error)

	// OpenReport opens the report file for read, it returns io.ReadCloser of the report file.
	OpenReport() (io.ReadCloser, error)

	// SaveModel writes the serialized model of the given run and model name.
	SaveModel(string, string, []byte) error

	// Clear removes the report file and all saved models.
	Clear() error
}

type storage struct {
	baseDir string
	models  map[string]struct{}
	mu      *sync.RWMutex
}

// New returns a new Storage instance.
func New(baseDir string) Storage {
	return &storage{
		baseDir: baseDir,
		models:  make(map[string]struct{}),
		mu:      &sync.RWMutex{},
	}
}

// CreateReport appends records to the report csv file.
func (s *storage) CreateReport(records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.reportFilename(), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.MarshalWithoutHeaders(records, file)
}

// ListReport returns all records in the report csv file.
func (s *storage) ListReport() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := os.Open(s.reportFilename())
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []Record
	if err := gocsv.UnmarshalWithoutHeaders(file, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// OpenReport opens the report file for read, it returns io.ReadCloser of the report file.
func (s *storage) OpenReport() (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return os.Open(s.reportFilename())
}

// SaveModel writes the serialized model of the given run and model name.
func (s *storage) SaveModel(runID, name string, model []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := s.modelFilename(runID, name)
	if err := os.WriteFile(filename, model, 0600); err != nil {
		return err
	}

	s.models[filename] = struct{}{}
	return nil
}

// Clear removes the report file and all saved models.
func (s *storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.reportFilename()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	for filename := range s.models {
		if err := os.Remove(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	s.models = make(map[string]struct{})
	return nil
}

// reportFilename generates report file name.
func (s *storage) reportFilename() string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s.%s", ReportFilePrefix, CSVFileExt))
}

// modelFilename generates model file name based on the given run id and model name.
func (s *storage) modelFilename(runID, name string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s-%s-%s.%s", ModelFilePrefix, runID, name, JSONFileExt))
}
