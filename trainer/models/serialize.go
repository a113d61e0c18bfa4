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

package models

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gonum.org/v1/gonum/mat"
)

type layerSnapshot struct {
	Weights [][]float64 `mapstructure:"weights"`
	Biases  []float64   `mapstructure:"biases"`
}

type snapshot struct {
	Fitted bool            `mapstructure:"fitted"`
	Inputs int             `mapstructure:"inputs"`
	Hidden []int           `mapstructure:"hidden"`
	Layers []layerSnapshot `mapstructure:"layers"`
}

func (m *MLP) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"fitted": m.Fitted,
		"inputs": m.Inputs,
		"hidden": m.Hidden,
		"layers": m.marshalLayers(),
	})
}

func (m *MLP) marshalLayers() []map[string]any {
	layers := make([]map[string]any, len(m.layers))
	for l, layer := range m.layers {
		rows, _ := layer.weights.Dims()
		weights := make([][]float64, rows)
		for i := range weights {
			weights[i] = mat.Row(nil, i, layer.weights)
		}

		layers[l] = map[string]any{
			"weights": weights,
			"biases":  layer.biases,
		}
	}

	return layers
}

func (m *MLP) UnmarshalJSON(data []byte) error {
	var d map[string]any
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	var s snapshot
	if err := mapstructure.Decode(d, &s); err != nil {
		return err
	}

	restored, err := NewMLP(s.Inputs, s.Hidden)
	if err != nil {
		return err
	}

	sizes := restored.sizes()
	// An unfitted snapshot may omit the layers, otherwise every layer is present.
	if (s.Fitted || len(s.Layers) > 0) && len(s.Layers) != len(sizes)-1 {
		return fmt.Errorf("expected %d layers, got %d", len(sizes)-1, len(s.Layers))
	}

	for l, ls := range s.Layers {
		in, out := sizes[l], sizes[l+1]
		if len(ls.Weights) != in || len(ls.Biases) != out {
			return fmt.Errorf("layer %d does not match shape %dx%d", l, in, out)
		}

		weights := mat.NewDense(in, out, nil)
		for i, row := range ls.Weights {
			if len(row) != out {
				return fmt.Errorf("layer %d row %d does not match shape %dx%d", l, i, in, out)
			}
			weights.SetRow(i, row)
		}

		restored.layers = append(restored.layers, &dense{weights: weights, biases: ls.Biases})
	}

	restored.Fitted = s.Fitted
	*m = *restored
	return nil
}
