package db

import (
	"time"
)

// User table. IDs are opaque strings: server-generated UUIDs on explicit
// registration, or whatever identifier a client supplied when a row had to
// be self-healed into existence.
type User struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	DisplayName string    `gorm:"size:32;not null" json:"display_name"`
	IsAdmin     bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Beatmap is a candidate map submission of type "suggestion" or "bounty".
//
// The descriptive fields (Stars .. PreviewURL) are stored as free-form text:
// submitters paste values straight from the game client and the frontend
// renders them verbatim. Numeric plausibility is checked at submit time only.
//
// SubmittedBy is a weak reference: no FK, because a user row may be absent at
// write time and is fabricated by the self-healing path instead.
type Beatmap struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	URL         string    `gorm:"size:512;not null" json:"url"`
	Stars       string    `gorm:"size:16" json:"stars"`
	CS          string    `gorm:"size:16" json:"cs"`
	AR          string    `gorm:"size:16" json:"ar"`
	OD          string    `gorm:"size:16" json:"od"`
	BPM         string    `gorm:"size:16" json:"bpm"`
	Length      string    `gorm:"size:16" json:"length"`
	Slot        string    `gorm:"size:32" json:"slot"`
	Mod         string    `gorm:"size:32" json:"mod"`
	Skill       string    `gorm:"size:64" json:"skill"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CoverURL    string    `gorm:"size:512" json:"cover_url"`
	PreviewURL  string    `gorm:"size:512" json:"preview_url"`
	Type        string    `gorm:"size:16" json:"type"` // "suggestion" or "bounty"
	Status      string    `gorm:"size:16;default:pending" json:"status"`
	SubmittedBy string    `gorm:"size:64;index" json:"submitted_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Vote row for a beatmap.
//
// Unique index on (beatmap_id, user_id) guarantees at most one vote per user
// per map; the toggle logic in the repository leans on that constraint rather
// than application-level locking.
type Vote struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BeatmapID uint64    `gorm:"not null;uniqueIndex:idx_beatmap_user,priority:1" json:"beatmap_id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_beatmap_user,priority:2" json:"user_id"`
	VoteType  string    `gorm:"size:8;not null" json:"vote_type"` // "upvote" or "downvote"
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Comment on a beatmap. DisplayName is a snapshot of the author's name at
// post time; a later rename does not rewrite history.
type Comment struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BeatmapID   uint64    `gorm:"not null;index" json:"beatmap_id"`
	UserID      string    `gorm:"size:64;not null" json:"user_id"`
	DisplayName string    `gorm:"size:32;not null" json:"display_name"`
	CommentText string    `gorm:"type:text;not null" json:"comment_text"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Vote type values accepted by the ledger.
const (
	VoteTypeUp   = "upvote"
	VoteTypeDown = "downvote"
)

// Submission type values.
const (
	TypeSuggestion = "suggestion"
	TypeBounty     = "bounty"
)
