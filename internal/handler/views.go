package handler

import (
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
)

// VehicleView mirrors domain.Vehicle on the wire
type VehicleView struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  string `json:"year"`
	Rego  string `json:"rego,omitempty"`
}

// JobView is the wire representation of a job
type JobView struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customerId"`
	MechanicID  string      `json:"mechanicId,omitempty"`
	Status      string      `json:"status"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Vehicle     VehicleView `json:"vehicle"`
	Location    string      `json:"location"`
	CreatedAt   time.Time   `json:"createdAt"`
	FinalPrice  *float64    `json:"finalPrice,omitempty"`
	Photos      []string    `json:"photos,omitempty"`
}

// MechanicProfileView is the wire representation of a mechanic profile
type MechanicProfileView struct {
	Verified        bool     `json:"verified"`
	Skills          []string `json:"skills,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	ABN             string   `json:"abn,omitempty"`
	ExperienceYears int      `json:"experienceYears,omitempty"`
}

// UserView is the wire representation of a user
type UserView struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	Phone    string               `json:"phone,omitempty"`
	Role     string               `json:"role"`
	Mechanic *MechanicProfileView `json:"mechanicProfile,omitempty"`
}

// MessageView is the wire representation of a chat message
type MessageView struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationView is the wire representation of an inbox entry
type NotificationView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Read         bool      `json:"read"`
	Type         string    `json:"type"`
	RelatedJobID string    `json:"relatedJobId,omitempty"`
}

func toJobView(j *domain.Job) JobView {
	return JobView{
		ID:          j.ID,
		CustomerID:  j.CustomerID,
		MechanicID:  j.MechanicID,
		Status:      string(j.Status),
		Category:    j.Category,
		Description: j.Description,
		Vehicle: VehicleView{
			Make:  j.Vehicle.Make,
			Model: j.Vehicle.Model,
			Year:  j.Vehicle.Year,
			Rego:  j.Vehicle.Rego,
		},
		Location:   j.Location,
		CreatedAt:  j.CreatedAt,
		FinalPrice: j.FinalPrice,
		Photos:     j.Photos,
	}
}

func toJobViews(jobs []*domain.Job) []JobView {
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobView(j))
	}
	return out
}

func toUserView(u *domain.User) UserView {
	view := UserView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  string(u.Role),
	}
	if u.Mechanic != nil {
		view.Mechanic = &MechanicProfileView{
			Verified:        u.Mechanic.Verified,
			Skills:          u.Mechanic.Skills,
			Bio:             u.Mechanic.Bio,
			ABN:             u.Mechanic.ABN,
			ExperienceYears: u.Mechanic.ExperienceYears,
		}
	}
	return view
}

func toMessageView(m *domain.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		JobID:     m.JobID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

func toNotificationView(n *domain.Notification) NotificationView {
	return NotificationView{
		ID:           n.ID,
		Title:        n.Title,
		Message:      n.Message,
		Timestamp:    n.Timestamp,
		Read:         n.Read,
		Type:         string(n.Type),
		RelatedJobID: n.RelatedJobID,
	}
}
