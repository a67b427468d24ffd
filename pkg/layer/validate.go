package layer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	hexColor  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColor = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\(\s*[-0-9.%,\s]+\)$`)
	nameColor = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// colorRule accepts hex colors, rgb()/rgba()/hsl() functions and named
// colors such as "transparent" or "white".
var colorRule = validation.By(func(value any) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" || hexColor.MatchString(s) || funcColor.MatchString(s) || nameColor.MatchString(s) {
		return nil
	}
	return errors.New("must be a hex, rgb(a) or named color")
})

func kindValues() []any {
	out := make([]any, len(Kinds))
	for i, k := range Kinds {
		out[i] = k
	}
	return out
}

// Validate checks that the layer has a known kind, non-negative dimensions
// and well-formed colors.
func (l Layer) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Kind, validation.Required, validation.In(kindValues()...)),
		validation.Field(&l.Width, validation.Min(0.0)),
		validation.Field(&l.Height, validation.Min(0.0)),
		validation.Field(&l.Properties),
	)
}

// Validate checks property ranges and color formats.
func (p Properties) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Fill, colorRule),
		validation.Field(&p.TextColor, colorRule),
		validation.Field(&p.Stroke, colorRule),
		validation.Field(&p.ShadowColor, colorRule),
		validation.Field(&p.Opacity, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&p.FontSize, validation.Min(0.0)),
	)
}

// ValidateLayers validates every layer and reports the first failure with
// its index and name.
func ValidateLayers(ls []Layer) error {
	for i, l := range ls {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("layer %d (%q): %w", i, l.Name, err)
		}
	}
	return nil
}
