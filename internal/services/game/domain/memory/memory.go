// Package memory keeps a bounded conversation history for a session.
//
// Older turns are folded into a running summary instead of being kept
// verbatim, so the context handed to the narrator stays small no matter how
// long a session runs.
package memory

import (
	"strings"
	"time"
)

const (
	// MaxTurns is the number of turns retained verbatim.
	MaxTurns = 30
	// EvictBatch is how many of the oldest turns are folded away on overflow.
	EvictBatch = 10
	// ExcerptLength caps each narrator turn folded into the summary.
	ExcerptLength = 150
	// MaxSummaryLength caps the running summary; the newest text is kept.
	MaxSummaryLength = 2000

	excerptSeparator = " | "
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one recorded exchange line.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Message is a turn as handed to the narrator, without its timestamp.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Memory is a capped, summarizing conversation log. It is not safe for
// concurrent use; the owning session serializes access.
type Memory struct {
	clock   func() time.Time
	turns   []Turn
	summary string
}

// New creates an empty memory. A nil clock uses time.Now.
func New(clock func() time.Time) *Memory {
	if clock == nil {
		clock = time.Now
	}
	return &Memory{clock: clock, turns: make([]Turn, 0, MaxTurns+1)}
}

// Append records a turn and folds the oldest turns into the summary once
// more than MaxTurns are held.
func (m *Memory) Append(role Role, content string) {
	m.turns = append(m.turns, Turn{Role: role, Content: content, Timestamp: m.clock().UTC()})
	if len(m.turns) <= MaxTurns {
		return
	}

	evicted := m.turns[:EvictBatch]
	excerpts := make([]string, 0, len(evicted))
	for _, turn := range evicted {
		if turn.Role != RoleAssistant {
			continue
		}
		excerpts = append(excerpts, truncate(turn.Content, ExcerptLength))
	}
	m.turns = append(m.turns[:0:0], m.turns[EvictBatch:]...)

	m.summary += "\n" + strings.Join(excerpts, excerptSeparator)
	m.summary = tail(m.summary, MaxSummaryLength)
}

// History returns every retained turn, oldest first.
func (m *Memory) History() []Message {
	return m.Recent(len(m.turns))
}

// Recent returns at most the n newest turns, oldest first.
func (m *Memory) Recent(n int) []Message {
	if n <= 0 {
		return []Message{}
	}
	start := max(0, len(m.turns)-n)
	out := make([]Message, 0, len(m.turns)-start)
	for _, turn := range m.turns[start:] {
		out = append(out, Message{Role: turn.Role, Content: turn.Content})
	}
	return out
}

// Turns returns a copy of the retained turns with timestamps.
func (m *Memory) Turns() []Turn {
	return append([]Turn(nil), m.turns...)
}

// Clone returns an independent copy sharing only the clock.
func (m *Memory) Clone() *Memory {
	return &Memory{clock: m.clock, turns: m.Turns(), summary: m.summary}
}

// Summary returns the condensed text of evicted narrator turns.
func (m *Memory) Summary() string {
	return m.summary
}

// Len reports how many turns are retained verbatim.
func (m *Memory) Len() int {
	return len(m.turns)
}

// truncate keeps at most n leading runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// tail keeps at most n trailing runes of s.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
