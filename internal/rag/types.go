package rag

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NoneToken is what an absent history formats to, and what clients send to mean "no history".
const NoneToken = "None"

// GenericCharacter is the persona used when the caller does not ask for one.
const GenericCharacter = "generic"

// Sender identifies who produced a chat turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatTurn is one message of the client-held conversation.
type ChatTurn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// History is either the none sentinel or an ordered list of turns.
// The zero value is the none sentinel.
type History struct {
	turns   []ChatTurn
	present bool
}

// NoHistory returns the none sentinel.
func NoHistory() History {
	return History{}
}

// NewHistory returns a history holding turns in order. An empty call yields
// a present but empty history, which is distinct from NoHistory.
func NewHistory(turns ...ChatTurn) History {
	return History{turns: append([]ChatTurn{}, turns...), present: true}
}

// IsNone reports whether h is the none sentinel.
func (h History) IsNone() bool {
	return !h.present
}

// Turns returns a copy of the turns; nil for the none sentinel.
func (h History) Turns() []ChatTurn {
	if !h.present {
		return nil
	}
	return append([]ChatTurn{}, h.turns...)
}

// UnmarshalJSON accepts null or "None" for the sentinel and an array of turns otherwise.
func (h *History) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = NoHistory()
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != NoneToken {
			return fmt.Errorf("history: unexpected string %q", s)
		}
		*h = NoHistory()
		return nil
	}

	var turns []ChatTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	*h = NewHistory(turns...)
	return nil
}

// MarshalJSON writes the sentinel as "None" and turns as an array.
func (h History) MarshalJSON() ([]byte, error) {
	if !h.present {
		return json.Marshal(NoneToken)
	}
	if h.turns == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.turns)
}

// Request is one chat pipeline invocation.
type Request struct {
	Query     string
	Character string
	History   History
}
