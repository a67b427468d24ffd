package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/layoutfix/pkg/archetype"
	"github.com/matzehuels/layoutfix/pkg/config"
	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

const draftJSON = `{
  "canvas": {"width": 1080, "height": 1080},
  "layers": [
    {"name": "background", "type": "rectangle", "x": 0, "y": 0, "width": 1080, "height": 1080,
     "properties": {"fill": "#1E3A5F"}},
    {"name": "headline", "type": "text", "x": 100, "y": 500, "width": 400, "height": 60,
     "properties": {"text": "Summer sale", "fontSize": 20, "fill": "#FFFFFF"}},
    {"name": "subtext", "type": "text", "x": 100, "y": 500, "width": 400, "height": 60,
     "properties": {"text": "Everything must go this week", "fontSize": 20, "fill": "#FFFFFF"}}
  ]
}`

// isolate points the cache at a temp dir and clears config overrides.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvRedisAddr, "")
	t.Setenv(config.EnvAnalysisURL, "")
}

// execute runs the root command and returns what it wrote to the output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDraft(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOptionsPrecedence(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Canvas = config.CanvasConfig{Width: 1200, Height: 1500}
	c.Config.Correction.MaxRevisions = 2

	tests := []struct {
		name       string
		doc        pipeline.Document
		flags      runFlags
		wantW      float64
		wantH      float64
		wantRevs   int
		wantBrand  string
		wantValid  bool
		configZero bool
	}{
		{name: "config", wantW: 1200, wantH: 1500, wantRevs: 2},
		{
			name:  "document over config",
			doc:   pipeline.Document{Canvas: pipeline.Canvas{Width: 1080, Height: 1920}, Brand: "acme"},
			wantW: 1080, wantH: 1920, wantRevs: 2, wantBrand: "acme",
		},
		{
			name:  "flags over document",
			doc:   pipeline.Document{Canvas: pipeline.Canvas{Width: 1080, Height: 1920}, Brand: "acme"},
			flags: runFlags{width: 600, brand: "other", maxRevisions: 4, validate: true},
			wantW: 600, wantH: 1920, wantRevs: 4, wantBrand: "other", wantValid: true,
		},
		{name: "zero config revisions disable the loop", configZero: true, wantW: 1200, wantH: 1500, wantRevs: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := *c
			if tt.configZero {
				cc.Config.Correction.MaxRevisions = 0
			}
			opts := cc.options(tt.doc, tt.flags)
			if opts.Width != tt.wantW || opts.Height != tt.wantH {
				t.Errorf("canvas = %vx%v, want %vx%v", opts.Width, opts.Height, tt.wantW, tt.wantH)
			}
			if opts.MaxRevisions != tt.wantRevs {
				t.Errorf("MaxRevisions = %d, want %d", opts.MaxRevisions, tt.wantRevs)
			}
			if opts.Brand != tt.wantBrand {
				t.Errorf("Brand = %q, want %q", opts.Brand, tt.wantBrand)
			}
			if opts.Validate != tt.wantValid {
				t.Errorf("Validate = %v, want %v", opts.Validate, tt.wantValid)
			}
			if opts.Logger == nil {
				t.Error("Logger not set")
			}
		})
	}
}

func TestCorrectCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	draft := writeDraft(t, dir, "post.json", draftJSON)

	out, err := execute(t, "correct", draft)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if !strings.Contains(out, "Corrected") {
		t.Errorf("output missing summary: %q", out)
	}

	corrected := filepath.Join(dir, "post.corrected.json")
	doc, err := pipeline.ReadDocument(corrected)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if doc.Canvas.Width != 1080 || doc.Canvas.Height != 1080 {
		t.Errorf("canvas = %+v", doc.Canvas)
	}
	if doc.Analysis == nil {
		t.Error("output should carry the analysis used")
	}
	var head, sub float64
	for _, l := range doc.Layers {
		switch l.Name {
		case "headline":
			head = l.Y
		case "subtext":
			sub = l.Y
		}
	}
	if head == sub {
		t.Errorf("headline and subtext still share y=%v", head)
	}
}

func TestCorrectCommandJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	draft := writeDraft(t, dir, "post.yaml", `
canvas: {width: 1080, height: 1350}
layers:
  - {name: headline, type: text, x: 100, y: 300, width: 600, height: 120, properties: {text: Hello, fontSize: 48}}
`)
	output := filepath.Join(dir, "custom.json")

	out, err := execute(t, "correct", draft, "--json", "--output", output, "--no-cache")
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a pipeline result: %v\n%s", err, out)
	}
	if res.RunID == "" || len(res.Layers) == 0 {
		t.Errorf("result = %+v", res)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("--output not written: %v", err)
	}
}

func TestCorrectCommandErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"correct", filepath.Join(dir, "nope.json")}},
		{"invalid layer", []string{"correct", writeDraft(t, dir, "bad.json", `[{"name":"x","type":"text","width":-5,"height":10}]`)}},
		{"bad canvas", []string{"correct", writeDraft(t, dir, "ok.json", draftJSON), "--width", "20000"}},
		{"control character in path", []string{"correct", "post\x01.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCorrectCommandParentPath(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeDraft(t, root, "post.json", draftJSON)
	work := filepath.Join(root, "work")
	if err := os.Mkdir(work, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(work)

	if _, err := execute(t, "correct", filepath.Join("..", "post.json")); err != nil {
		t.Fatalf("correct ../post.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "post.corrected.json")); err != nil {
		t.Errorf("output next to the draft: %v", err)
	}
}

func TestCritiqueCommand(t *testing.T) {
	isolate(t)
	draft := writeDraft(t, t.TempDir(), "post.json", draftJSON)

	out, err := execute(t, "critique", draft, "--json")
	if err != nil {
		t.Fatalf("critique: %v", err)
	}
	var res critic.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Scores) != len(critic.Criteria()) {
		t.Errorf("scores = %v", res.Scores)
	}

	_, err = execute(t, "critique", draft, "--strict")
	if res.Passed && err != nil {
		t.Errorf("--strict failed an approved layout: %v", err)
	}
	if !res.Passed && err == nil {
		t.Error("--strict should fail a layout that needs revision")
	}

	out, err = execute(t, "critique", draft)
	if err != nil {
		t.Fatalf("critique: %v", err)
	}
	for _, c := range critic.Criteria() {
		if !strings.Contains(out, string(c)) {
			t.Errorf("score table missing %s", c)
		}
	}
	if !strings.Contains(out, string(res.Verdict)) {
		t.Errorf("output missing verdict %s", res.Verdict)
	}
}

func TestArchetypeCommand(t *testing.T) {
	isolate(t)

	pick := func(args ...string) archetypeOutput {
		t.Helper()
		out, err := execute(t, append([]string{"archetype", "--json"}, args...)...)
		if err != nil {
			t.Fatalf("archetype: %v", err)
		}
		var got archetypeOutput
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return got
	}

	got := pick("--focal-x", "0.8", "--focal-y", "0.3")
	if got.Selected != archetype.HeroLeft {
		t.Errorf("selected %s, want %s", got.Selected, archetype.HeroLeft)
	}
	if len(got.Scores) != len(archetype.DefaultCatalog().Names()) || got.Scores[0].Name != got.Selected {
		t.Errorf("scores = %+v", got.Scores)
	}

	got = pick("--focal-x", "0.8", "--focal-y", "0.3", "--recent", archetype.HeroLeft)
	if got.Selected == archetype.HeroLeft {
		t.Error("recent archetype should be penalized")
	}

	first := pick("--focal-x", "0.8", "--focal-y", "0.3", "--brand", "acme")
	second := pick("--focal-x", "0.8", "--focal-y", "0.3", "--brand", "acme")
	if first.Selected == second.Selected {
		t.Errorf("brand history ignored: %s twice", first.Selected)
	}
	if !slices.Contains(second.Recent, first.Selected) {
		t.Errorf("recent = %v, want it to include %s", second.Recent, first.Selected)
	}

	if _, err := execute(t, "archetype", "--focal-x", "1.5"); err == nil {
		t.Error("expected error for focal point outside [0, 1]")
	}
}

func TestTokensCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "tokens")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	for _, want := range []string{"Font scale", "3xl", "spacing", "corner radii", "gastro", "Montserrat", "primary"} {
		if !strings.Contains(out, want) {
			t.Errorf("tokens output missing %q", want)
		}
	}

	out, err = execute(t, "tokens", "--industry", "gastro")
	if err != nil {
		t.Fatalf("tokens --industry: %v", err)
	}
	if !strings.Contains(out, "Lora") || !strings.Contains(out, "italic") {
		t.Errorf("gastro pairing = %q", out)
	}
}

func TestBatchCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeDraft(t, dir, "a.json", draftJSON)
	writeDraft(t, dir, "b.json", draftJSON)
	writeDraft(t, dir, "a.corrected.json", draftJSON)
	writeDraft(t, dir, "notes.txt", "ignored")

	out, err := execute(t, "batch", dir, "-j", "2")
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	for _, name := range []string{"a.corrected.json", "b.corrected.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "a.corrected.corrected.json")); err == nil {
		t.Error("batch corrected its own output")
	}

	writeDraft(t, dir, "broken.json", `{"layers": [`)
	if _, err := execute(t, "batch", dir); err == nil {
		t.Error("expected an error when a draft fails")
	}
}

func TestCollectDrafts(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "stories")
	hidden := filepath.Join(dir, ".git")
	for _, d := range []string{sub, hidden} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []string{
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "a.corrected.yaml"),
		filepath.Join(dir, "readme.md"),
		filepath.Join(sub, "s.yml"),
		filepath.Join(hidden, "x.json"),
	} {
		writeDraft(t, filepath.Dir(p), filepath.Base(p), "[]")
	}
	explicit := writeDraft(t, t.TempDir(), "draft.txt", "[]")

	got, err := collectDrafts([]string{dir, explicit, filepath.Join(dir, "b.json")})
	if err != nil {
		t.Fatalf("collectDrafts() error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.json"),
		filepath.Join(sub, "s.yml"),
		explicit,
	}
	if !slices.Equal(got, want) {
		t.Errorf("collectDrafts() = %v, want %v", got, want)
	}

	if _, err := collectDrafts([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("expected error for missing path")
	}
}
