package domain

import (
	"testing"
	"time"
)

func TestFormatTimestamp_FixedWidth(t *testing.T) {
	a := FormatTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	b := FormatTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 120_000_000, time.FixedZone("x", 3600)))

	if a != "2025-01-02T03:04:05.000Z" {
		t.Fatalf("unexpected format: %s", a)
	}
	if b != "2025-01-02T02:04:05.120Z" {
		t.Fatalf("expected UTC conversion, got %s", b)
	}
	if len(a) != len(b) {
		t.Fatalf("timestamps must be fixed width: %q vs %q", a, b)
	}
}

func TestSummarizeChats_LatestPerChat(t *testing.T) {
	msgs := []Message{
		{ID: "1", ChatID: "a", CustomerName: "Sarah", Message: "hi", Timestamp: "2025-01-01T10:00:00.000Z"},
		{ID: "2", ChatID: "b", CustomerName: "Mike", Message: "where is my package", Timestamp: "2025-01-01T10:05:00.000Z"},
		{ID: "3", ChatID: "a", CustomerName: "Sarah", Message: "order #12345", Timestamp: "2025-01-01T10:10:00.000Z"},
		{ID: "4", ChatID: "b", CustomerName: "Mike", Message: "older", Timestamp: "2025-01-01T09:00:00.000Z"},
	}

	got := SummarizeChats(msgs)
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].ChatID != "a" || got[0].Message != "order #12345" {
		t.Fatalf("unexpected first summary: %+v", got[0])
	}
	if got[1].ChatID != "b" || got[1].Message != "where is my package" {
		t.Fatalf("unexpected second summary: %+v", got[1])
	}
}

func TestSummarizeChats_Empty(t *testing.T) {
	got := SummarizeChats(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSortMessages_Ascending(t *testing.T) {
	msgs := []Message{
		{ID: "c", Timestamp: "2025-01-01T10:00:02.000Z"},
		{ID: "a", Timestamp: "2025-01-01T10:00:00.000Z"},
		{ID: "b", Timestamp: "2025-01-01T10:00:01.000Z"},
	}
	SortMessages(msgs)

	for i, want := range []string{"a", "b", "c"} {
		if msgs[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, msgs[i].ID)
		}
	}
}
