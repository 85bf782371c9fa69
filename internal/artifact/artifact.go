// Package artifact classifies the string keys that name data flowing between
// nodes.
//
// A key is one of three kinds:
//   - regular: ordinary data, participates in dependency inference
//   - parameter: starts with ParamPrefix (or is the aggregate Parameters key)
//     and never induces an edge
//   - transcoded: carries TranscodeSeparator followed by a format tag; it
//     matches its base key for dependency purposes and is stored under the
//     base key, so every variant reads the same value
package artifact

import "strings"

const (
	// ParamPrefix marks a single configuration parameter.
	ParamPrefix = "params:"
	// Parameters names the aggregate of all parameters.
	Parameters = "parameters"
	// TranscodeSeparator separates a base key from its format tag.
	TranscodeSeparator = "@"
)

// Kind is the classification of an artifact key.
type Kind int

const (
	Regular Kind = iota
	Parameter
	Transcoded
)

func (k Kind) String() string {
	switch k {
	case Parameter:
		return "parameter"
	case Transcoded:
		return "transcoded"
	default:
		return "regular"
	}
}

// Classify returns the kind of key.
func Classify(key string) Kind {
	switch {
	case IsParameter(key):
		return Parameter
	case strings.Contains(key, TranscodeSeparator):
		return Transcoded
	default:
		return Regular
	}
}

// IsParameter reports whether key is configuration rather than data.
func IsParameter(key string) bool {
	return key == Parameters || strings.HasPrefix(key, ParamPrefix)
}

// Base strips the transcoding suffix. Parameters are returned unchanged.
func Base(key string) string {
	if IsParameter(key) {
		return key
	}
	base, _, _ := strings.Cut(key, TranscodeSeparator)
	return base
}

// Format returns the transcoding tag of key, or "" if it has none.
func Format(key string) string {
	if IsParameter(key) {
		return ""
	}
	_, format, _ := strings.Cut(key, TranscodeSeparator)
	return format
}

// BaseSet returns the base keys of all non-parameter keys, deduplicated, in
// order of first appearance.
func BaseSet(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if IsParameter(k) {
			continue
		}
		b := Base(k)
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

// Overlaps reports whether the base sets of a and b intersect. Parameters on
// either side are ignored.
func Overlaps(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, k := range BaseSet(a) {
		set[k] = struct{}{}
	}
	for _, k := range BaseSet(b) {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}
