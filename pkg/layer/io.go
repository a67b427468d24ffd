package layer

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Decoding
// =============================================================================

// UnmarshalJSON decodes a layer, applies property defaults and infers the
// role when the input does not carry one.
func (l *Layer) UnmarshalJSON(data []byte) error {
	type plain Layer
	aux := struct {
		*plain
		Properties *Properties `json:"properties"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Properties != nil {
		l.Properties = *aux.Properties
	} else {
		l.Properties = Properties{Opacity: DefaultOpacity}
	}
	l.applyDefaults()
	if l.Role == "" {
		l.Role = InferRole(*l)
	}
	return nil
}

// UnmarshalYAML decodes a layer from YAML using the same rules as JSON.
func (l *Layer) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert yaml layer: %w", err)
	}
	return l.UnmarshalJSON(data)
}

// =============================================================================
// Slices
// =============================================================================

// MarshalLayers encodes layers as indented JSON.
func MarshalLayers(ls []Layer) ([]byte, error) {
	return json.MarshalIndent(ls, "", "  ")
}

// UnmarshalLayers decodes a JSON array of layers.
func UnmarshalLayers(data []byte) ([]Layer, error) {
	var ls []Layer
	if err := json.Unmarshal(data, &ls); err != nil {
		return nil, fmt.Errorf("unmarshal layers: %w", err)
	}
	return ls, nil
}

// UnmarshalLayersYAML decodes a YAML sequence of layers.
func UnmarshalLayersYAML(data []byte) ([]Layer, error) {
	var ls []Layer
	if err := yaml.Unmarshal(data, &ls); err != nil {
		return nil, fmt.Errorf("unmarshal layers: %w", err)
	}
	return ls, nil
}
