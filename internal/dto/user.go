package dto

import "time"

type CreateUserRequest struct {
	IdentityToken string `json:"identityToken" binding:"required"`
}

// UpdateProfileRequest carries the profile-completion fields. Full name
// and email are the gate; everything else is overwritten as provided.
type UpdateProfileRequest struct {
	FullName    string `json:"fullName" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	DateOfBirth string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" binding:"omitempty,max=20"`
	SchoolName  string `json:"schoolName" binding:"omitempty,max=150"`
	ClassName   string `json:"className" binding:"omitempty,max=50"`
	Address     string `json:"address" binding:"omitempty,max=250"`
	City        string `json:"city" binding:"omitempty,max=100"`
	State       string `json:"state" binding:"omitempty,max=100"`
	Pincode     string `json:"pincode" binding:"omitempty,max=10"`
	FatherName  string `json:"fatherName" binding:"omitempty,max=100"`
	MotherName  string `json:"motherName" binding:"omitempty,max=100"`
}

// UpdateXPRequest carries a client-reported delta. A pointer keeps the
// presence check from rejecting a legitimate zero delta.
type UpdateXPRequest struct {
	XP *int64 `json:"xp" binding:"required"`
}

type UpdateXPResponse struct {
	Success bool  `json:"success"`
	NewXP   int64 `json:"newXp"`
}

type UserResponse struct {
	ID                uint       `json:"id"`
	Subject           string     `json:"subject"`
	Phone             string     `json:"phone"`
	IsVerified        bool       `json:"isVerified"`
	FullName          string     `json:"fullName,omitempty"`
	Email             string     `json:"email,omitempty"`
	DateOfBirth       *time.Time `json:"dateOfBirth,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	SchoolName        string     `json:"schoolName,omitempty"`
	ClassName         string     `json:"className,omitempty"`
	Address           string     `json:"address,omitempty"`
	City              string     `json:"city,omitempty"`
	State             string     `json:"state,omitempty"`
	Pincode           string     `json:"pincode,omitempty"`
	FatherName        string     `json:"fatherName,omitempty"`
	MotherName        string     `json:"motherName,omitempty"`
	IsProfileComplete bool       `json:"isProfileComplete"`
	XP                int64      `json:"xp"`
	LastLoginAt       time.Time  `json:"lastLoginAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type LeaderboardEntry struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	XP       int64  `json:"xp"`
}

type LeaderboardResponse struct {
	Success     bool               `json:"success"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
