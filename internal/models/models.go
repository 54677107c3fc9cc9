// Package models defines the journal's domain records.
package models

import "time"

// VideoCategory classifies a coaching video.
type VideoCategory string

const (
	CategoryFormation VideoCategory = "formation"
	CategoryAnalyse   VideoCategory = "analyse"
)

// Risk represents the risk level of a signal.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// SignalType represents the direction of a signal.
type SignalType string

const (
	SignalLong  SignalType = "long"
	SignalShort SignalType = "short"
)

// SignalStatus represents the status of a signal.
type SignalStatus string

const (
	SignalActive    SignalStatus = "active"
	SignalCompleted SignalStatus = "completed"
	SignalCancelled SignalStatus = "cancelled"
)

// IdeaNote is a freeform note pinned on the idea board.
type IdeaNote struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	PositionX float64   `json:"positionX"`
	PositionY float64   `json:"positionY"`
	CreatedAt time.Time `json:"createdAt"`
}

// Video is a saved coaching video reference.
type Video struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	Description string        `json:"description"`
	Category    VideoCategory `json:"category"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Signal is a logged trading signal.
type Signal struct {
	ID          string       `json:"id"`
	Coin        string       `json:"coin"`
	Type        SignalType   `json:"type"`
	EntryPrice  float64      `json:"entryPrice"`
	TargetPrice float64      `json:"targetPrice"`
	StopLoss    float64      `json:"stopLoss"`
	Description string       `json:"description"`
	Risk        Risk         `json:"risk"`
	Status      SignalStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Message is a community chat message.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an account known to the local auth provider.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	PasswordSalt string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is an authenticated session for a user.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
