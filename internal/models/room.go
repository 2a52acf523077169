package models

import "time"

// RoomType classifies rooms for course placement.
type RoomType string

const (
	RoomLectureHall RoomType = "LECTURE_HALL"
	RoomLab         RoomType = "LAB"
	RoomSeminar     RoomType = "SEMINAR"
	RoomComputerLab RoomType = "COMPUTER_LAB"
)

// IsLab reports whether the room satisfies a lab requirement.
func (t RoomType) IsLab() bool {
	return t == RoomLab || t == RoomComputerLab
}

// Room is a teaching venue.
type Room struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Capacity   int       `db:"capacity" json:"capacity"`
	Type       RoomType  `db:"type" json:"type"`
	Building   string    `db:"building" json:"building"`
	Department *string   `db:"department" json:"department,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
