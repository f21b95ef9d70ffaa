// Package prompts renders the LLM prompt templates embedded from JSON files.
// Each file maps a prompt key to a text/template body.
package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.json
var promptFiles embed.FS

var (
	loadOnce sync.Once
	loaded   map[string]*template.Template
	loadErr  error
)

// load parses every embedded file once. Templates are named "file/key".
func load() (map[string]*template.Template, error) {
	loadOnce.Do(func() {
		entries, err := promptFiles.ReadDir(".")
		if err != nil {
			loadErr = fmt.Errorf("read embedded prompts: %w", err)
			return
		}

		loaded = make(map[string]*template.Template)
		for _, entry := range entries {
			data, err := promptFiles.ReadFile(entry.Name())
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", entry.Name(), err)
				return
			}
			var bodies map[string]string
			if err := json.Unmarshal(data, &bodies); err != nil {
				loadErr = fmt.Errorf("parse prompt file %s: %w", entry.Name(), err)
				return
			}
			for key, body := range bodies {
				name := entry.Name() + "/" + key
				tmpl, err := template.New(name).Option("missingkey=error").Parse(body)
				if err != nil {
					loadErr = fmt.Errorf("parse prompt %s: %w", name, err)
					return
				}
				loaded[name] = tmpl
			}
		}
	})
	return loaded, loadErr
}

// Render executes the prompt stored under key in filename with data.
// A placeholder without a value in data is an error.
func Render(filename, key string, data map[string]string) (string, error) {
	templates, err := load()
	if err != nil {
		return "", err
	}
	tmpl, ok := templates[filename+"/"+key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", key, filename)
	}

	if data == nil {
		data = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s/%s: %w", filename, key, err)
	}
	return buf.String(), nil
}

// Keys returns the prompt keys defined in filename, sorted.
func Keys(filename string) ([]string, error) {
	templates, err := load()
	if err != nil {
		return nil, err
	}

	prefix := path.Clean(filename) + "/"
	var keys []string
	for name := range templates {
		if key, ok := strings.CutPrefix(name, prefix); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("prompt file %s not found", filename)
	}
	sort.Strings(keys)
	return keys, nil
}
