package structuring

// Resume is the structured, ATS-optimized resume produced by the model.
// Every list is non-nil in values produced by this package.
type Resume struct {
	Name                string           `json:"name"`
	Email               string           `json:"email"`
	Phone               string           `json:"phone"`
	Location            string           `json:"location"`
	ProfessionalSummary string           `json:"professional_summary"`
	Skills              []string         `json:"skills"`
	WorkExperience      []WorkExperience `json:"work_experience"`
	Projects            []Project        `json:"projects"`
	Education           []Education      `json:"education"`
	Certifications      []Certification  `json:"certifications"`
	ATSScore            int              `json:"ats_score" validate:"min=0,max=100"`
	Feedback            []string         `json:"feedback" validate:"min=1"`
}

type WorkExperience struct {
	Company          string   `json:"company"`
	Position         string   `json:"position"`
	Duration         string   `json:"duration"`
	Location         string   `json:"location"`
	Responsibilities []string `json:"responsibilities"`
}

type Project struct {
	Title        string   `json:"title"`
	Technologies []string `json:"technologies"`
	Description  string   `json:"description"`
	Link         string   `json:"link"`
}

type Education struct {
	Degree             string   `json:"degree"`
	Institution        string   `json:"institution"`
	GraduationYear     string   `json:"graduation_year"`
	Location           string   `json:"location"`
	RelevantCoursework []string `json:"relevant_coursework"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	Expiry string `json:"expiry"`
}

// FallbackFeedback is the single feedback entry of a failed structuring.
const FallbackFeedback = "Error generating structured resume"

// Fallback is the value returned alongside a structuring error.
func Fallback() Resume {
	return Resume{
		Skills:         []string{},
		WorkExperience: []WorkExperience{},
		Projects:       []Project{},
		Education:      []Education{},
		Certifications: []Certification{},
		Feedback:       []string{FallbackFeedback},
	}
}

// Normalize replaces nil lists, including nested ones, with empty lists.
func (r Resume) Normalize() Resume {
	r.Skills = nonNil(r.Skills)
	r.Feedback = nonNil(r.Feedback)
	if r.WorkExperience == nil {
		r.WorkExperience = []WorkExperience{}
	}
	for i := range r.WorkExperience {
		r.WorkExperience[i].Responsibilities = nonNil(r.WorkExperience[i].Responsibilities)
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	for i := range r.Projects {
		r.Projects[i].Technologies = nonNil(r.Projects[i].Technologies)
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	for i := range r.Education {
		r.Education[i].RelevantCoursework = nonNil(r.Education[i].RelevantCoursework)
	}
	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
	return r
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
