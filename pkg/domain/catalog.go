package domain

// CourseFilter narrows a catalog query. Empty fields are unset.
type CourseFilter struct {
	Course     string `json:"course,omitempty"`
	Semester   string `json:"semester,omitempty"`
	Discipline string `json:"discipline,omitempty"`
}

// DisciplineMatch locates a discipline inside the catalog.
type DisciplineMatch struct {
	Course     string `json:"course"`
	Semester   string `json:"semester"`
	Discipline string `json:"discipline"`
}
