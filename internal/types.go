package internal

import "time"

// SessionRecord is a finished translation session as kept in the history
// database. Details holds the session result JSON.
type SessionRecord struct {
	ID              string    `json:"id"`
	SourceFile      string    `json:"source_file"`
	OutputFile      string    `json:"output_file"`
	SourceLang      string    `json:"source_lang"`
	TargetLang      string    `json:"target_lang"`
	TranslationType string    `json:"translation_type"`
	Profiles        []string  `json:"selected_translators"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model"`
	Chunks          int       `json:"chunks"`
	Tokens          int       `json:"total_tokens"`
	Seconds         float64   `json:"total_time"`
	Details         string    `json:"details,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
