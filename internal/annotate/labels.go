package annotate

import (
	"path"
	"strings"
)

const targetSeparator = "/"

// LabelSet assigns link labels to targets. A target is labeled with its base name unless
// another target shares it, in which case the shortest trailing run of path segments that
// no other target shares is used, e.g. "unit/SortTest.cpp" and "tst/SortTest.cpp".
type LabelSet struct {
	labels map[string]string
}

// NewLabelSet computes the labels of targets. Targets are slash-separated paths.
func NewLabelSet(targets ...string) *LabelSet {
	targetsByName := map[string][]string{}
	seenTargets := map[string]struct{}{}
	for _, target := range targets {
		cleanTarget := path.Clean(target)
		if _, seen := seenTargets[cleanTarget]; seen {
			continue
		}
		seenTargets[cleanTarget] = struct{}{}
		name := path.Base(cleanTarget)
		targetsByName[name] = append(targetsByName[name], cleanTarget)
	}

	labels := make(map[string]string, len(seenTargets))
	for name, sameNamedTargets := range targetsByName {
		if len(sameNamedTargets) == 1 {
			labels[sameNamedTargets[0]] = name
			continue
		}
		for _, target := range sameNamedTargets {
			labels[target] = uniqueSuffix(target, sameNamedTargets)
		}
	}
	return &LabelSet{labels: labels}
}

// Label returns the label of target. Unknown targets, and every target of a nil set, are
// labeled with their base name.
func (set *LabelSet) Label(target string) string {
	cleanTarget := path.Clean(target)
	if set != nil {
		if label, known := set.labels[cleanTarget]; known {
			return label
		}
	}
	return path.Base(cleanTarget)
}

func uniqueSuffix(target string, sameNamedTargets []string) string {
	segments := strings.Split(target, targetSeparator)
	for segmentCount := 2; segmentCount < len(segments); segmentCount++ {
		candidate := trailingSegments(segments, segmentCount)
		shared := false
		for _, other := range sameNamedTargets {
			if other == target {
				continue
			}
			if trailingSegments(strings.Split(other, targetSeparator), segmentCount) == candidate {
				shared = true
				break
			}
		}
		if !shared {
			return candidate
		}
	}
	return target
}

func trailingSegments(segments []string, segmentCount int) string {
	if segmentCount > len(segments) {
		segmentCount = len(segments)
	}
	return strings.Join(segments[len(segments)-segmentCount:], targetSeparator)
}
