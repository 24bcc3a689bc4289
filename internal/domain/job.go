package domain

import "time"

// JobStatus is the lifecycle state of a job request.
type JobStatus string

const (
	StatusOpen                    JobStatus = "OPEN"
	StatusAccepted                JobStatus = "ACCEPTED"
	StatusCompletedPendingPayment JobStatus = "COMPLETED_PENDING_PAYMENT"
	StatusPaidAndClosed           JobStatus = "PAID_AND_CLOSED"
	StatusCancelled               JobStatus = "CANCELLED"
)

// Terminal reports whether no further transition is defined out of s.
func (s JobStatus) Terminal() bool {
	return s == StatusPaidAndClosed || s == StatusCancelled
}

// MaxJobPhotos bounds the number of photos attached at job creation.
const MaxJobPhotos = 3

// Vehicle describes the car a job is about.
type Vehicle struct {
	Make  string
	Model string
	Year  string
	Rego  string // registration plate, optional
}

// Job is the central workflow entity. CustomerID is set at creation and never
// changes; MechanicID is set exactly once, when a mechanic accepts the job.
// FinalPrice is recorded when the customer confirms payment.
type Job struct {
	ID          string
	CustomerID  string
	MechanicID  string
	Status      JobStatus
	Category    string
	Description string
	Vehicle     Vehicle
	Location    string
	CreatedAt   time.Time
	FinalPrice  *float64
	Photos      []string
}

// JobRepository defines data access for jobs
type JobRepository interface {
	Create(job *Job) error
	GetByID(id string) (*Job, error)
	Update(job *Job) error
	List() ([]*Job, error)
}
