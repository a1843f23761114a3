package cart

import (
	"sort"
	"strconv"
	"strings"
)

// SameOptions reports whether two selections are structurally equal: the
// same multiset of option name → chosen values, ignoring the order of the
// groups and of the values inside each group.
func SameOptions(a, b []SelectedOption) bool {
	if len(a) != len(b) {
		return false
	}
	return optionsKey(a) == optionsKey(b)
}

// optionsKey renders a selection in canonical form. Names and values are
// quoted so that separators inside them cannot collide.
func optionsKey(opts []SelectedOption) string {
	entries := make([]string, 0, len(opts))
	for _, opt := range opts {
		values := make([]string, len(opt.ChosenValues))
		for i, v := range opt.ChosenValues {
			values[i] = strconv.Quote(v)
		}
		sort.Strings(values)
		entries = append(entries, strconv.Quote(opt.OptionName)+"="+strings.Join(values, ","))
	}
	sort.Strings(entries)
	return strings.Join(entries, ";")
}

func cloneOptions(opts []SelectedOption) []SelectedOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]SelectedOption, len(opts))
	for i, opt := range opts {
		out[i] = SelectedOption{
			OptionName:   opt.OptionName,
			ChosenValues: append([]string(nil), opt.ChosenValues...),
		}
	}
	return out
}
