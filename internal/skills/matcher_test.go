package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testMatcher() *Matcher {
	return NewMatcher(map[string][]string{
		"python":           {"py"},
		"sql":              nil,
		"node.js":          {"nodejs", "node"},
		"c++":              {"cpp"},
		"kubernetes":       {"k8s"},
		"machine learning": {"ml"},
		"ruby on rails":    {"rails"},
		"microservices":    {"microservice"},
		"ci/cd":            {"cicd"},
	})
}

func TestMatcher_Find(t *testing.T) {
	m := testMatcher()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "comma separated list",
			text: "Skills: Python, SQL",
			want: []string{"python", "sql"},
		},
		{
			name: "alias resolves to canonical",
			text: "Deployed services on K8s with Node",
			want: []string{"kubernetes", "node.js"},
		},
		{
			name: "symbols in names",
			text: "C++ and CI/CD pipelines",
			want: []string{"c++", "ci/cd"},
		},
		{
			name: "multi word phrase",
			text: "Built Ruby on Rails apps and Machine-Learning models",
			want: []string{"ruby on rails", "machine learning"},
		},
		{
			name: "near exact spacing and dots",
			text: "nodejs, Node.js, node js",
			want: []string{"node.js"},
		},
		{
			name: "plural tolerated",
			text: "Designed microservices",
			want: []string{"microservices"},
		},
		{
			name: "no match",
			text: "Enjoys hiking",
			want: []string{},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Find(tt.text))
		})
	}
}

func TestMatcher_FindDedupesCaseFolded(t *testing.T) {
	m := testMatcher()
	got := m.Find("PYTHON python Python py SQL sql")

	assert.Equal(t, []string{"python", "sql"}, got)
	seen := map[string]bool{}
	for _, s := range got {
		key := strings.ToLower(s)
		assert.False(t, seen[key], "duplicate %q", s)
		seen[key] = true
	}
}

func TestMatcher_FindNeverNil(t *testing.T) {
	assert.NotNil(t, NewMatcher(nil).Find("anything"))
}

func TestMatcher_Contains(t *testing.T) {
	m := testMatcher()
	assert.True(t, m.Contains("worked with py daily", "Python"))
	assert.False(t, m.Contains("worked with java", "python"))
}

func TestMatcher_DeterministicAliasCollision(t *testing.T) {
	terms := map[string][]string{
		"beta":  {"shared"},
		"alpha": {"shared"},
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, []string{"alpha"}, NewMatcher(terms).Find("shared"))
	}
}

func TestMatchKey(t *testing.T) {
	assert.Equal(t, "nodejs", MatchKey("Node.js"))
	assert.Equal(t, "fastpaced", MatchKey("fast-paced"))
	assert.Equal(t, "fastpaced", MatchKey("Fast Paced"))
	assert.Equal(t, "c++", MatchKey("C++"))
	assert.Equal(t, "", MatchKey("  "))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"Remote", "nyc"}, Dedupe([]string{"Remote", "remote", " ", "nyc", "NYC"}))
	assert.Empty(t, Dedupe(nil))
}
