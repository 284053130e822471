package domain

import (
	"cmp"
	"slices"
	"time"
)

// TimestampLayout is fixed-width UTC with milliseconds, so timestamps order
// correctly under plain string comparison.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Message is a single line in a support conversation. ChatID is assigned by
// the caller; a chat exists only as the set of messages sharing it.
type Message struct {
	ID           string `json:"id"`
	ChatID       string `json:"chatId"`
	CustomerName string `json:"customerName"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
}

// ChatSummary is the most recent message of a chat.
type ChatSummary struct {
	ChatID       string `json:"chatId"`
	CustomerName string `json:"customerName"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
}

// SortMessages orders msgs by ascending timestamp, keeping insertion order on ties.
func SortMessages(msgs []Message) {
	slices.SortStableFunc(msgs, func(a, b Message) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
}

// SortSummaries orders summaries newest first, then by chat id.
func SortSummaries(summaries []ChatSummary) {
	slices.SortFunc(summaries, func(a, b ChatSummary) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ChatID, b.ChatID)
	})
}

// SummarizeChats reduces msgs to one summary per chat holding the message
// with the greatest timestamp. The first message seen wins a tie.
func SummarizeChats(msgs []Message) []ChatSummary {
	latest := make(map[string]Message)
	for _, m := range msgs {
		cur, ok := latest[m.ChatID]
		if !ok || m.Timestamp > cur.Timestamp {
			latest[m.ChatID] = m
		}
	}

	out := make([]ChatSummary, 0, len(latest))
	for _, m := range latest {
		out = append(out, ChatSummary{
			ChatID:       m.ChatID,
			CustomerName: m.CustomerName,
			Message:      m.Message,
			Timestamp:    m.Timestamp,
		})
	}
	SortSummaries(out)
	return out
}
