package internal

import "time"

// Call type values as stored in ZCALLRECORD.ZCALLTYPE
const (
	CallTypePhone         = 1
	CallTypeFaceTime      = 2
	CallTypeFacebookAudio = 3
	CallTypeFacebookVideo = 4
)

// CallRecord is one row of call history. Date and Time carry the converted
// calendar components for table display; Duration is in seconds; Name is the
// display name the call store itself recorded, while DisplayLabel is resolved
// against the address book.
type CallRecord struct {
	Address         string    `json:"address"`
	CallType        int       `json:"call_type"`
	CallTypeLabel   string    `json:"call_type_label"`
	CallDate        time.Time `json:"call_date"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Duration        int       `json:"duration"`
	Name            string    `json:"name,omitempty"`
	ServiceProvider string    `json:"service_provider,omitempty"`
	CountryCode     string    `json:"country_code,omitempty"`
	DisplayLabel    string    `json:"display_label"`
}

type CallStatistics struct {
	TotalCalls            int `json:"total_calls"`
	OutgoingCalls         int `json:"outgoing_calls"`
	IncomingCalls         int `json:"incoming_calls"`
	TotalOutgoingDuration int `json:"total_outgoing_duration"`
	TotalIncomingDuration int `json:"total_incoming_duration"`
}

type Message struct {
	ChatID       int64     `json:"chat_id"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
	SentAt       string    `json:"sent_at"` // combined YYYY-MM-DD HH:MM:SS
	IsFromMe     bool      `json:"is_from_me"`
	Sender       string    `json:"sender,omitempty"` // empty for outgoing messages
	DisplayLabel string    `json:"display_label"`
}

type Conversation struct {
	ChatID         int64     `json:"chat_id"`
	ChatIdentifier string    `json:"chat_identifier"`
	Label          string    `json:"label"`
	Participants   []string  `json:"participants"`
	Messages       []Message `json:"messages"`
	IncomingCount  int       `json:"incoming_count"`
	OutgoingCount  int       `json:"outgoing_count"`
	LastActivity   time.Time `json:"last_activity"`
}

type Contact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Pagination struct {
	Page         int  `json:"page"`
	PageSize     int  `json:"page_size"`
	TotalRecords int  `json:"total_records"`
	HasPrevious  bool `json:"has_previous"`
	HasNext      bool `json:"has_next"`
}

// CallsResponse is the payload for GET /api/calls.
// Stats is only present when a phone number filter is active.
type CallsResponse struct {
	Records    []CallRecord    `json:"records"`
	Stats      *CallStatistics `json:"stats,omitempty"`
	StatsLabel string          `json:"stats_label,omitempty"`
	Pagination Pagination      `json:"pagination"`
}

type MessagesResponse struct {
	Conversations []Conversation `json:"conversations"`
	Search        string         `json:"search,omitempty"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never send password hash to client
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type AuthResponse struct {
	Success bool     `json:"success"`
	User    *User    `json:"user,omitempty"`
	Session *Session `json:"session,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// FormatCallType maps ZCALLTYPE values to the labels the original viewer used.
func FormatCallType(callType int) string {
	switch callType {
	case CallTypePhone:
		return "Phone Call"
	case CallTypeFaceTime:
		return "FaceTime"
	case CallTypeFacebookAudio:
		return "Facebook Audio"
	case CallTypeFacebookVideo:
		return "Facebook Video"
	default:
		return "Unknown"
	}
}
