package models

// User is a read model over the external user collaborator. Only the fields
// needed for booking enrichment are carried.
type User struct {
	ID        int64  `json:"id" yaml:"id"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
}

// DisplayName renders the name shown alongside bookings.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// TutorProfile links a tutor id to its backing user account.
type TutorProfile struct {
	TutorID  int64  `json:"tutor_id" yaml:"tutor_id"`
	UserID   int64  `json:"user_id" yaml:"user_id"`
	Headline string `json:"headline,omitempty" yaml:"headline"`
}

// Course is a read model over the external course collaborator, consumed
// only for title enrichment.
type Course struct {
	ID    int64  `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}
