package store

import (
	"testing"
	"time"
)

func TestMatches(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	e := Entry{
		CacheID:   "pages:home",
		Created:   at.Add(-time.Hour),
		Expires:   at,
		Unlimited: false,
		Tags:      []string{"boot", "layout"},
	}

	cases := []struct {
		name    string
		filters []Filter
		want    bool
	}{
		{"no_filters", nil, true},
		{"cache_id_eq", []Filter{{FieldCacheID, OpEq, "pages:home"}}, true},
		{"cache_id_eq_miss", []Filter{{FieldCacheID, OpEq, "pages:other"}}, false},
		{"cache_id_range_hit", []Filter{
			{FieldCacheID, OpGe, "pages:"},
			{FieldCacheID, OpLt, "pages;"},
		}, true},
		{"cache_id_range_miss", []Filter{
			{FieldCacheID, OpGe, "assets:"},
			{FieldCacheID, OpLt, "assets;"},
		}, false},
		{"expires_le_equal", []Filter{{FieldExpires, OpLe, at}}, true},
		{"expires_le_later_bound", []Filter{{FieldExpires, OpLe, at.Add(time.Minute)}}, true},
		{"expires_le_earlier_bound", []Filter{{FieldExpires, OpLe, at.Add(-time.Minute)}}, false},
		{"unlimited_eq", []Filter{{FieldUnlimited, OpEq, false}}, true},
		{"unlimited_eq_miss", []Filter{{FieldUnlimited, OpEq, true}}, false},
		{"tag_membership", []Filter{{FieldTags, OpEq, "layout"}}, true},
		{"tag_membership_miss", []Filter{{FieldTags, OpEq, "nav"}}, false},
		{"and_semantics", []Filter{
			{FieldUnlimited, OpEq, false},
			{FieldExpires, OpLe, at},
			{FieldTags, OpEq, "boot"},
		}, true},
		{"and_short_circuits", []Filter{
			{FieldUnlimited, OpEq, true},
			{FieldTags, OpEq, "boot"},
		}, false},

		// filters that cannot be evaluated never match
		{"unknown_field", []Filter{{"color", OpEq, "red"}}, false},
		{"wrong_value_type", []Filter{{FieldExpires, OpLe, "not a time"}}, false},
		{"unsupported_tag_op", []Filter{{FieldTags, OpLe, "boot"}}, false},
		{"unsupported_unlimited_op", []Filter{{FieldUnlimited, OpGe, true}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Matches(e, tc.filters); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatchesTimeComparisons(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	e := Entry{CacheID: "k", Expires: at}

	// Equal must use time equality, not instant identity, so differing
	// wall/monotonic representations still compare right.
	if !Matches(e, []Filter{{FieldExpires, OpEq, at.Add(0)}}) {
		t.Fatalf("OpEq on equal instants should match")
	}
	if !Matches(e, []Filter{{FieldExpires, OpGe, at}}) {
		t.Fatalf("OpGe on equal instants should match")
	}
	if Matches(e, []Filter{{FieldExpires, OpLt, at}}) {
		t.Fatalf("OpLt on equal instants should not match")
	}
}
