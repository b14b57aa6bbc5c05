package model

import "time"

type MemoryType string

const (
	MemoryStory      MemoryType = "story"
	MemoryPerson     MemoryType = "person"
	MemoryEvent      MemoryType = "event"
	MemoryMedication MemoryType = "medication"
	MemoryRoutine    MemoryType = "routine"
	MemoryPreference MemoryType = "preference"
	MemoryOther      MemoryType = "other"
)

func (t MemoryType) Valid() bool {
	switch t {
	case MemoryStory, MemoryPerson, MemoryEvent, MemoryMedication,
		MemoryRoutine, MemoryPreference, MemoryOther:
		return true
	}
	return false
}

// Normalize maps unknown types to MemoryOther.
func (t MemoryType) Normalize() MemoryType {
	if t.Valid() {
		return t
	}
	return MemoryOther
}

// Memory is an immutable journal entry captured by the elder.
type Memory struct {
	ID            string     `json:"id"`
	SubjectID     string     `json:"elder_id"`
	RawText       string     `json:"raw_text"`
	Type          MemoryType `json:"type"`
	EmotionalTone string     `json:"emotional_tone,omitempty"`
	Tags          []string   `json:"tags"`
	ImageURL      string     `json:"image_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type QuestionAnswer struct {
	ID         string     `json:"id"`
	SubjectID  string     `json:"elder_id"`
	Question   string     `json:"question"`
	Answer     *string    `json:"answer,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}
