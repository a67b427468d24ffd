package tokens

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadFile reads a TOML token override. Any scale or table the file leaves
// out keeps its default value.
func LoadFile(path string) (Tokens, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tokens{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a TOML token override.
func Parse(data []byte) (Tokens, error) {
	var t Tokens
	if _, err := toml.Decode(string(data), &t); err != nil {
		return Tokens{}, fmt.Errorf("decode tokens: %w", err)
	}
	t = t.merge(Default())
	if err := t.validate(); err != nil {
		return Tokens{}, err
	}
	return t, nil
}

func (t Tokens) validate() error {
	for i := 1; i < len(t.FontScale); i++ {
		if t.FontScale[i].Size <= t.FontScale[i-1].Size {
			return fmt.Errorf("font_scale must be strictly ascending (%s=%d after %s=%d)",
				t.FontScale[i].Name, t.FontScale[i].Size, t.FontScale[i-1].Name, t.FontScale[i-1].Size)
		}
	}
	if t.BaselineUnit <= 0 {
		return fmt.Errorf("baseline_unit must be positive, got %d", t.BaselineUnit)
	}
	if t.SafeMarginRatio < 0 || t.SafeMarginRatio >= 0.5 {
		return fmt.Errorf("safe_margin_ratio must be in [0, 0.5), got %v", t.SafeMarginRatio)
	}
	return nil
}
