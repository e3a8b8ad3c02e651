package domain

type ProjectID string

// ProjectMember is one (user, role) pair of a project.
// Membership is managed elsewhere; this core only reads it.
type ProjectMember struct {
	UserID UserID `json:"user_id"`
	Role   string `json:"role"`
}

type Project struct {
	ID      ProjectID       `json:"id"`
	Title   string          `json:"title"`
	Members []ProjectMember `json:"members"`
}

