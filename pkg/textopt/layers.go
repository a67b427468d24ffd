package textopt

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Defaults for layers that leave the relevant property unset.
const (
	DefaultWidth      = 300.0
	DefaultLineHeight = 1.2
)

// Change records what [Optimizer.OptimizeLayers] did to one layer.
type Change struct {
	Layer     string  `json:"layer"`
	Text      string  `json:"text,omitempty"`
	OldHeight float64 `json:"old_height"`
	NewHeight float64 `json:"new_height"`
	Lines     int     `json:"estimated_lines"`
}

// Optimizer applies text optimization to whole layouts.
type Optimizer struct {
	logger *log.Logger
}

// New returns an Optimizer. A nil logger discards output.
func New(logger *log.Logger) *Optimizer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Optimizer{logger: logger}
}

// OptimizeLayers rewrites the copy of every text layer with widow and
// orphan protection and grows each layer to the height its text needs.
// Heights are never reduced.
func (o *Optimizer) OptimizeLayers(ls []layer.Layer) ([]layer.Layer, []Change) {
	out := layer.CloneAll(ls)
	var changes []Change
	for i := range out {
		l := &out[i]
		if !l.IsText() || l.Properties.Text == "" {
			continue
		}
		width, fs, lh := dims(*l)
		res := Optimize(l.Properties.Text, width, fs)

		ch := Change{Layer: l.Name, OldHeight: l.Height, NewHeight: l.Height, Lines: res.Lines}
		if res.Modified {
			l.Properties.Text = res.Text
			ch.Text = res.Text
		}
		if need := RequiredHeight(res.Text, width, fs, lh); need > l.Height {
			l.Height = need
			ch.NewHeight = need
			o.logger.Debug("text layer height adjusted", "layer", l.Name, "from", ch.OldHeight, "to", need, "lines", res.Lines)
		}
		if res.Modified || ch.NewHeight != ch.OldHeight {
			changes = append(changes, ch)
		}
	}
	return out, changes
}

// FitHeights grows text layers to their required height without touching
// their copy.
func FitHeights(ls []layer.Layer) []layer.Layer {
	out := layer.CloneAll(ls)
	for i := range out {
		l := &out[i]
		if !l.IsText() || l.Properties.Text == "" {
			continue
		}
		width, fs, lh := dims(*l)
		if need := RequiredHeight(l.Properties.Text, width, fs, lh); need > l.Height {
			l.Height = need
		}
	}
	return out
}

func dims(l layer.Layer) (width, fontSize, lineHeight float64) {
	width, fontSize, lineHeight = l.Width, l.Properties.FontSize, l.Properties.LineHeight
	if width <= 0 {
		width = DefaultWidth
	}
	if fontSize <= 0 {
		fontSize = layer.DefaultFontSize
	}
	if lineHeight <= 0 {
		lineHeight = DefaultLineHeight
	}
	return width, fontSize, lineHeight
}
