package resumes

import "resume-generator/internal/structuring"

const (
	PaymentNotice       = "You have not made payment. Please pay to view the full response."
	LockedWork          = "🔒 Upgrade to view work experience details"
	LockedProjects      = "🔒 Upgrade to view projects details"
	LockedEducation     = "🔒 Upgrade to view education details"
	LockedCertification = "🔒 Upgrade to view certifications details"
	LockedFeedback      = "🔒 Upgrade to view detailed feedback and suggestions"

	teaserSkills = 3
)

// Teaser is what an unpaid caller sees.
type Teaser struct {
	Notice              string   `json:"notice"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	ProfessionalSummary string   `json:"professional_summary"`
	Skills              []string `json:"skills"`
	ATSScore            int      `json:"ats_score"`
	WorkExperience      string   `json:"work_experience"`
	Projects            string   `json:"projects"`
	Education           string   `json:"education"`
	Certifications      string   `json:"certifications"`
	Feedback            []string `json:"feedback"`
}

// Project returns full unchanged when paid, otherwise its Teaser.
func Project(full structuring.Resume, paid bool) any {
	if paid {
		return full
	}
	skills := full.Skills
	if len(skills) > teaserSkills {
		skills = skills[:teaserSkills]
	}
	return Teaser{
		Notice:              PaymentNotice,
		Name:                full.Name,
		Email:               full.Email,
		ProfessionalSummary: full.ProfessionalSummary,
		Skills:              append([]string{}, skills...),
		ATSScore:            full.ATSScore,
		WorkExperience:      LockedWork,
		Projects:            LockedProjects,
		Education:           LockedEducation,
		Certifications:      LockedCertification,
		Feedback:            []string{LockedFeedback},
	}
}
