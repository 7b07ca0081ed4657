package filter

import "sort"

// Selection maps a facet group to its selected band labels.
// The zero value is an empty selection.
type Selection struct {
	groups map[string]map[string]struct{}
}

// NewSelection builds a selection from group -> labels.
func NewSelection(groups map[string][]string) Selection {
	var s Selection
	for group, labels := range groups {
		for _, label := range labels {
			s.add(group, label)
		}
	}
	return s
}

func (s *Selection) add(group, label string) {
	if s.groups == nil {
		s.groups = map[string]map[string]struct{}{}
	}
	if s.groups[group] == nil {
		s.groups[group] = map[string]struct{}{}
	}
	s.groups[group][label] = struct{}{}
}

// Toggle adds label to group if absent and removes it if present.
func (s *Selection) Toggle(group, label string) {
	if _, ok := s.groups[group][label]; ok {
		delete(s.groups[group], label)
		if len(s.groups[group]) == 0 {
			delete(s.groups, group)
		}
		return
	}
	s.add(group, label)
}

// Has reports whether label is selected in group.
func (s Selection) Has(group, label string) bool {
	_, ok := s.groups[group][label]
	return ok
}

// Labels returns the selected labels of group in sorted order.
func (s Selection) Labels(group string) []string {
	labels := make([]string, 0, len(s.groups[group]))
	for label := range s.groups[group] {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Groups returns the groups with at least one selected label, sorted.
func (s Selection) Groups() []string {
	groups := make([]string, 0, len(s.groups))
	for group, labels := range s.groups {
		if len(labels) > 0 {
			groups = append(groups, group)
		}
	}
	sort.Strings(groups)
	return groups
}

// IsEmpty returns true if nothing is selected in any group.
func (s Selection) IsEmpty() bool {
	return len(s.Groups()) == 0
}
