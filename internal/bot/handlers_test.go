package bot

import (
	"reflect"
	"testing"
)

func TestMentionIDs(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"<@123> <@456>", []string{"123", "456"}},
		{"<@!789>", []string{"789"}},
		{"kick <@123> please", []string{"123"}},
		{"no mentions here", nil},
		{"<@>", nil},
	}
	for _, tc := range cases {
		if got := mentionIDs(tc.input); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("mentionIDs(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestPageBounds(t *testing.T) {
	cases := []struct {
		total, page         int
		wantPage, wantPages int
		wantStart, wantEnd  int
	}{
		{total: 5, page: 1, wantPage: 1, wantPages: 1, wantStart: 0, wantEnd: 5},
		{total: 25, page: 2, wantPage: 2, wantPages: 3, wantStart: 10, wantEnd: 20},
		{total: 25, page: 3, wantPage: 3, wantPages: 3, wantStart: 20, wantEnd: 25},
		{total: 25, page: 9, wantPage: 3, wantPages: 3, wantStart: 20, wantEnd: 25},
		{total: 25, page: -1, wantPage: 1, wantPages: 3, wantStart: 0, wantEnd: 10},
	}
	for _, tc := range cases {
		page, pages, start, end := pageBounds(tc.total, tc.page, 10)
		if page != tc.wantPage || pages != tc.wantPages || start != tc.wantStart || end != tc.wantEnd {
			t.Fatalf("pageBounds(%d, %d) = %d/%d [%d:%d], want %d/%d [%d:%d]",
				tc.total, tc.page, page, pages, start, end,
				tc.wantPage, tc.wantPages, tc.wantStart, tc.wantEnd)
		}
	}
}

func TestActionEmbedReasonField(t *testing.T) {
	embed := actionEmbed("Title", "desc", "being rude")
	if len(embed.Fields) != 1 || embed.Fields[0].Value != "being rude" {
		t.Fatalf("expected a reason field, got %+v", embed.Fields)
	}
	plain := actionEmbed("Title", "desc", "")
	if len(plain.Fields) != 0 {
		t.Fatalf("expected no fields without a reason, got %+v", plain.Fields)
	}
}
