package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_JSONMarshaling(t *testing.T) {
	metadata := &Metadata{
		Source:     "resume.txt",
		Timestamp:  "2024-01-01T00:00:00Z",
		Hash:       "abcd1234",
		Characters: 12,
		Lines:      2,
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var unmarshaled Metadata
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	assert.Equal(t, *metadata, unmarshaled)
}

func TestContentHash(t *testing.T) {
	hash1 := ContentHash("test content")
	hash2 := ContentHash("different content")

	assert.Len(t, hash1, 64)
	assert.NotEqual(t, hash1, hash2)
	assert.Equal(t, hash1, ContentHash("test content"))
}

func TestNewMetadata(t *testing.T) {
	metadata := NewMetadata("line one\nline two é", "https://example.com/resume.pdf")

	assert.Equal(t, "https://example.com/resume.pdf", metadata.Source)
	assert.Equal(t, ContentHash("line one\nline two é"), metadata.Hash)
	assert.Equal(t, 19, metadata.Characters)
	assert.Equal(t, 2, metadata.Lines)

	_, err := time.Parse(time.RFC3339, metadata.Timestamp)
	assert.NoError(t, err)
}

func TestNewMetadata_Empty(t *testing.T) {
	metadata := NewMetadata("", "")

	assert.Empty(t, metadata.Source)
	assert.Zero(t, metadata.Lines)
	assert.Zero(t, metadata.Characters)
}
