// Package contextreg exposes a process-wide read-only table of well-known
// (namespace URI -> canonical prefix) pairs, loaded once from embedded
// resource files.
//
// Resource files under resources/ are either relaxed JSON (comments
// permitted, optionally wrapped in an "@context" key) standardized through
// [github.com/tailscale/hujson], or YAML parsed with
// [github.com/goccy/go-yaml]. URI values are stored with any trailing '#'
// trimmed so a schema namespace matches with or without a fragment marker.
//
// The schema compiler consults [CanonicalPrefix] to prefer a well-known
// prefix when multiple candidates are in play, and the namespace extractor
// uses it to warn about non-standard prefix choices.
package contextreg

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/tailscale/hujson"
)

//go:embed resources
var resources embed.FS

var (
	once     sync.Once
	byURI    map[string]string
	loadErrs []string
)

// CanonicalPrefix returns the well-known prefix for a namespace URI, or the
// empty string when the URI is not registered. A trailing '#' on uri is
// ignored for matching.
func CanonicalPrefix(uri string) string {
	once.Do(load)

	return byURI[strings.TrimSuffix(uri, "#")]
}

// Known reports whether uri has a registered canonical prefix.
func Known(uri string) bool {
	return CanonicalPrefix(uri) != ""
}

// LoadWarnings returns any diagnostics recorded while loading the embedded
// resources, such as two resource files disagreeing on a prefix.
func LoadWarnings() []string {
	once.Do(load)

	warnings := make([]string, len(loadErrs))
	copy(warnings, loadErrs)

	return warnings
}

// load reads every embedded resource file exactly once. Resource files are
// processed in name order; on a conflict the first binding encountered wins.
func load() {
	byURI = make(map[string]string)

	entries, err := resources.ReadDir("resources")
	if err != nil {
		loadErrs = append(loadErrs, fmt.Sprintf("read resources: %v", err))

		return
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	for _, name := range names {
		data, err := resources.ReadFile(path.Join("resources", name))
		if err != nil {
			loadErrs = append(loadErrs, fmt.Sprintf("%s: %v", name, err))

			continue
		}

		bindings, err := parseResource(name, data)
		if err != nil {
			loadErrs = append(loadErrs, fmt.Sprintf("%s: %v", name, err))

			continue
		}

		merge(name, bindings)
	}
}

// parseResource decodes one resource file into a prefix -> URI map.
func parseResource(name string, data []byte) (map[string]string, error) {
	var raw map[string]any

	switch path.Ext(name) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(std, &raw); err != nil {
			return nil, err
		}
	}

	if ctx, ok := raw["@context"].(map[string]any); ok {
		raw = ctx
	}

	bindings := make(map[string]string, len(raw))

	for prefix, v := range raw {
		uri, ok := v.(string)
		if !ok {
			continue
		}

		bindings[prefix] = strings.TrimSuffix(uri, "#")
	}

	return bindings, nil
}

// merge folds one file's bindings into the registry, first binding wins.
// Prefixes are visited in sorted order so conflicts resolve the same way on
// every run.
func merge(name string, bindings map[string]string) {
	prefixes := make([]string, 0, len(bindings))

	for p := range bindings {
		prefixes = append(prefixes, p)
	}

	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		uri := bindings[prefix]

		if existing, ok := byURI[uri]; ok {
			if existing != prefix {
				msg := fmt.Sprintf("%s: %s already registered as %q, keeping it over %q",
					name, uri, existing, prefix)
				loadErrs = append(loadErrs, msg)
				slog.Warn("context registry conflict",
					slog.String("resource", name),
					slog.String("uri", uri),
					slog.String("kept", existing),
					slog.String("ignored", prefix),
				)
			}

			continue
		}

		byURI[uri] = prefix
	}
}
