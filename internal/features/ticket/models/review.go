package models

import "time"

// ReviewRequest is a pending post-close rating solicitation. It lives in
// memory only and is consumed exactly once when the owner picks a rating.
type ReviewRequest struct {
	ID        string
	ChannelID string
	OwnerID   string
	StaffID   string
	CreatedAt time.Time
}

// ReviewRecord is the completed rating forwarded to the review log.
type ReviewRecord struct {
	TicketChannelID string
	OwnerID         string
	StaffID         string
	Rating          int
}
