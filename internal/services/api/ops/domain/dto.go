// Package domain holds DTOs and ports for the ops http surface
package domain

// ActionInput is a button press relayed by the chat transport
type ActionInput struct {
	UserID string `json:"user_id"           validate:"required,min=1,max=128" example:"u_1042"`
	ChatID string `json:"chat_id,omitempty" validate:"omitempty,max=128"      example:"c_88"`
	Token  string `json:"token"             validate:"required,min=3,max=64"  example:"checkin_done:42"`
}

// ActionOutput carries the acknowledgement text shown to the user
type ActionOutput struct {
	Ack string `json:"ack" example:"Done. 7 days and counting."`
}

// JobRow describes one installed schedule
type JobRow struct {
	Name    string            `json:"name"    example:"checkin_u_1042"`
	Kind    string            `json:"kind"    example:"checkin"`
	Enabled bool              `json:"enabled" example:"true"`
	Data    map[string]string `json:"data,omitempty"`
}

// JobsOutput lists installed schedules
type JobsOutput struct {
	Jobs []JobRow `json:"jobs"`
}

// SyncOutput reports one vault sync pass
type SyncOutput struct {
	Cards int `json:"cards" example:"17"`
}
