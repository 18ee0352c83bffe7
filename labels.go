package reviewguard

import (
	"fmt"
	"sort"
)

// LabelEncoder maps the two class labels to integer codes and back. It is
// fitted once; every later encode and decode reuses the same mapping so
// persisted models stay consistent with their labels.
type LabelEncoder struct {
	Classes []string       // sorted; index is the code
	codes   map[string]int // rebuilt lazily after gob decode
}

// FitLabels learns the label set. Exactly two distinct labels are required.
func (le *LabelEncoder) FitLabels(labels []string) error {
	seen := make(map[string]bool)
	for _, label := range labels {
		seen[label] = true
	}
	if len(seen) != 2 {
		return fmt.Errorf("label encoder: need exactly 2 classes, got %d", len(seen))
	}
	le.Classes = le.Classes[:0]
	for label := range seen {
		le.Classes = append(le.Classes, label)
	}
	sort.Strings(le.Classes)
	// The pipeline convention is 0=genuine, 1=fake; preserve it whenever
	// those are the labels, regardless of sort order.
	if seen[LabelGenuine] && seen[LabelFake] {
		le.Classes[0], le.Classes[1] = LabelGenuine, LabelFake
	}
	le.buildCodes()
	return nil
}

func (le *LabelEncoder) buildCodes() {
	le.codes = make(map[string]int, len(le.Classes))
	for i, class := range le.Classes {
		le.codes[class] = i
	}
}

// Encode maps labels to codes.
func (le *LabelEncoder) Encode(labels []string) ([]int, error) {
	if le.codes == nil {
		le.buildCodes()
	}
	out := make([]int, len(labels))
	for i, label := range labels {
		code, ok := le.codes[label]
		if !ok {
			return nil, fmt.Errorf("label encoder: unknown label %q", label)
		}
		out[i] = code
	}
	return out, nil
}

// Decode maps codes back to labels.
func (le *LabelEncoder) Decode(codes []int) ([]string, error) {
	out := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(le.Classes) {
			return nil, fmt.Errorf("label encoder: code %d out of range", code)
		}
		out[i] = le.Classes[code]
	}
	return out, nil
}
