package cache

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys.
type Keyer interface {
	// AnalysisKey identifies an image analysis result.
	AnalysisKey(imageURL string, width, height int) string
	// CorrectionKey identifies a corrected layout for a draft hash.
	CorrectionKey(draftHash string, opts CorrectionKeyOpts) string
	// HistoryKey identifies the archetype history of a brand.
	HistoryKey(brand string) string
}

// CorrectionKeyOpts are the options that change a correction result.
type CorrectionKeyOpts struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Validate     bool   `json:"validate"`
	AnalysisHash string `json:"analysis_hash,omitempty"`
	Version      string `json:"version,omitempty"`
}

// DefaultKeyer produces the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AnalysisKey returns "image_analysis:" + md5(url:width:height), the same
// layout the analysis provider uses, so entries can be shared with it.
func (DefaultKeyer) AnalysisKey(imageURL string, width, height int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d:%d", imageURL, width, height)))
	return "image_analysis:" + hex.EncodeToString(sum[:])
}

// CorrectionKey returns "correction:" + sha256 of the draft hash and the
// options, so a different canvas, analysis or step list misses.
func (DefaultKeyer) CorrectionKey(draftHash string, opts CorrectionKeyOpts) string {
	data, _ := json.Marshal(struct {
		Draft string            `json:"draft"`
		Opts  CorrectionKeyOpts `json:"opts"`
	}{draftHash, opts})
	return "correction:" + Hash(data)
}

// HistoryKey returns "layout_history:brand:<brand>".
func (DefaultKeyer) HistoryKey(brand string) string {
	if brand == "" {
		brand = "default"
	}
	return "layout_history:brand:" + brand
}

var _ Keyer = DefaultKeyer{}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. Drafts and analyses are hashed
// this way before they go into a correction key.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Hash(data), nil
}
