package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Metadata describes one ingested document.
type Metadata struct {
	Source     string `json:"source,omitempty"`
	Timestamp  string `json:"timestamp"` // RFC3339 format
	Hash       string `json:"hash"`      // SHA256 hex digest of the cleaned text
	Characters int    `json:"characters"`
	Lines      int    `json:"lines"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, source string) *Metadata {
	lines := 0
	if content != "" {
		lines = strings.Count(content, "\n") + 1
	}
	return &Metadata{
		Source:     source,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Hash:       ContentHash(content),
		Characters: len([]rune(content)),
		Lines:      lines,
	}
}

// ContentHash returns the hex SHA256 digest of content.
func ContentHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
