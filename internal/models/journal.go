package models

import (
	"fmt"
	"time"
)

// EventType is the emotion tag of a journal event.
type EventType string

const (
	EventHappiness EventType = "happiness"
	EventSadness   EventType = "sadness"
	EventFear      EventType = "fear"
	EventDisgust   EventType = "disgust"
	EventAnger     EventType = "anger"
	EventSurprise  EventType = "surprise"
	EventIDK       EventType = "idk"
	EventSoSo      EventType = "so-so"
)

// EventTypes lists every emotion tag in display order.
var EventTypes = []EventType{
	EventHappiness, EventSadness, EventFear, EventDisgust,
	EventAnger, EventSurprise, EventIDK, EventSoSo,
}

// Valid reports whether t is a known emotion tag.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BlockType is the kind of a journal content block.
type BlockType string

const (
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"
	BlockVideo BlockType = "video"
)

// ContentBlock is one piece of a journal event body.
type ContentBlock struct {
	ID      string    `json:"id"`
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
}

// JournalEvent is an emotion-tagged entry for a date.
type JournalEvent struct {
	ID        string         `json:"id"`
	EventType EventType      `json:"eventType"`
	Title     string         `json:"title"`
	Date      string         `json:"date"`
	Blocks    []ContentBlock `json:"blocks"`
}

// Validate checks the fields the core relies on.
func (e *JournalEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("journal event: empty id")
	}
	if !e.EventType.Valid() {
		return fmt.Errorf("journal event %s: unknown event type %q", e.ID, e.EventType)
	}
	return ValidateDate(e.Date)
}

// JournalEntry is a timestamped free-text note for a date.
type JournalEntry struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

// CreatedAtTime returns CreatedAt as time.Time.
func (e *JournalEntry) CreatedAtTime() time.Time {
	return time.UnixMilli(e.CreatedAt)
}
