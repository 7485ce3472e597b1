package models

import "time"

// Faculty is a faculty member with one integer counter per achievement type.
// Counter columns are only written through FacultyRepository.IncrementCounter.
type Faculty struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Department  string  `db:"department" json:"department"`
	Designation string  `db:"designation" json:"designation"`
	Email       *string `db:"email" json:"email,omitempty"`

	JournalPublications    int `db:"journalpublications" json:"journalpublications"`
	ConferencePublications int `db:"conferencepublications" json:"conferencepublications"`
	BookChapters           int `db:"bookchapters" json:"bookchapters"`
	Books                  int `db:"books" json:"books"`
	Patents                int `db:"patents" json:"patents"`
	Copyrights             int `db:"copyrights" json:"copyrights"`
	ResearchProjects       int `db:"researchprojects" json:"researchprojects"`
	ConsultancyProjects    int `db:"consultancyprojects" json:"consultancyprojects"`
	ResearchGrants         int `db:"researchgrants" json:"researchgrants"`
	StudentProjects        int `db:"studentprojects" json:"studentprojects"`
	HackathonsMentored     int `db:"hackathonsmentored" json:"hackathonsmentored"`
	FDPsAttended           int `db:"fdpsattended" json:"fdpsattended"`
	Certifications         int `db:"certifications" json:"certifications"`
	IndustryCollaborations int `db:"industrycollaborations" json:"industrycollaborations"`
	Awards                 int `db:"awards" json:"awards"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// FacultyFilter captures filtering options for listing faculty.
type FacultyFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
}

// FacultyProfileUpdate carries the identity fields a profile edit may change.
type FacultyProfileUpdate struct {
	Name        *string
	Department  *string
	Designation *string
	Email       *string
}
