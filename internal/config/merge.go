package config

import (
	"reflect"
	"sort"
	"strings"
)

// Reserved key suffixes for list patching in override documents.
const (
	ExcludeSuffix = "_exclude"
	ExpandSuffix  = "_expand"
)

// MergeReport describes what an override document changed.
type MergeReport struct {
	Replaced []string       // direct keys that replaced a base value
	Excluded map[string]int // base key -> number of elements removed
	Expanded map[string]int // base key -> number of elements appended
	Ignored  []string       // keys that had no effect
}

// Merge applies doc onto base and returns a new document; neither input is
// modified. Keys are handled in three passes over the same document:
//
//  1. direct keys replace the base value entirely;
//  2. "<key>_exclude" removes every listed element from the list at key;
//  3. "<key>_expand" appends every listed element to the list at key.
//
// Expansion therefore always applies to the replaced and excluded list.
// Patching a key that is absent or not a list is a no-op.
func Merge(base, doc map[string]any) (map[string]any, MergeReport) {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	rep := MergeReport{Excluded: map[string]int{}, Expanded: map[string]int{}}
	keys := sortedKeys(doc)

	for _, k := range keys {
		if isPatchKey(k) {
			continue
		}
		if _, ok := out[k]; !ok {
			rep.Ignored = append(rep.Ignored, k)
			continue
		}
		out[k] = doc[k]
		rep.Replaced = append(rep.Replaced, k)
	}

	for _, k := range keys {
		if !strings.HasSuffix(k, ExcludeSuffix) {
			continue
		}
		target := strings.TrimSuffix(k, ExcludeSuffix)
		list, ok := out[target].([]any)
		drop, dok := doc[k].([]any)
		if !ok || !dok {
			rep.Ignored = append(rep.Ignored, k)
			continue
		}
		kept := make([]any, 0, len(list))
		for _, el := range list {
			if !contains(drop, el) {
				kept = append(kept, el)
			}
		}
		out[target] = kept
		rep.Excluded[target] += len(list) - len(kept)
	}

	for _, k := range keys {
		if !strings.HasSuffix(k, ExpandSuffix) {
			continue
		}
		target := strings.TrimSuffix(k, ExpandSuffix)
		list, ok := out[target].([]any)
		add, aok := doc[k].([]any)
		if !ok || !aok {
			rep.Ignored = append(rep.Ignored, k)
			continue
		}
		grown := make([]any, 0, len(list)+len(add))
		grown = append(grown, list...)
		grown = append(grown, add...)
		out[target] = grown
		rep.Expanded[target] += len(add)
	}
	return out, rep
}

func isPatchKey(k string) bool {
	return strings.HasSuffix(k, ExcludeSuffix) || strings.HasSuffix(k, ExpandSuffix)
}

func contains(list []any, v any) bool {
	for _, el := range list {
		if reflect.DeepEqual(el, v) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
