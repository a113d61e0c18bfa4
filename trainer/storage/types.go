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

package storage

// Record contains the result of one model of one experiment run.
type Record struct {
	// RunID is the id of the experiment run.
	RunID string `csv:"runID"`

	// Model is the model name, uniform or weighted.
	Model string `csv:"model"`

	// Dataset is the dataset source.
	Dataset string `csv:"dataset"`

	// Epochs is the number of training epochs.
	Epochs int `csv:"epochs"`

	// TrainSamples is the size of the train partition.
	TrainSamples int `csv:"trainSamples"`

	// TestSamples is the size of the test partition.
	TestSamples int `csv:"testSamples"`

	// NegativeWeight is the class weight of the negative label used by the model.
	NegativeWeight float64 `csv:"negativeWeight"`

	// PositiveWeight is the class weight of the positive label used by the model.
	PositiveWeight float64 `csv:"positiveWeight"`

	// Accuracy is the test accuracy.
	Accuracy float64 `csv:"accuracy"`

	// PositiveRate is the fraction of test predictions equal to the positive label.
	PositiveRate float64 `csv:"positiveRate"`

	// ActualPositiveRate is the fraction of test labels equal to the positive label.
	ActualPositiveRate float64 `csv:"actualPositiveRate"`

	// CreatedAt is record create nanosecond time.
	CreatedAt int64 `csv:"createdAt"`
}
