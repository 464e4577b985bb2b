package resumes

import "resume-generator/internal/structuring"

func sampleResume() structuring.Resume {
	return structuring.Resume{
		Name:                "Alice Example",
		Email:               "alice@example.com",
		Phone:               "+1 555 0100",
		Location:            "Berlin",
		ProfessionalSummary: "Backend engineer focused on Go services.",
		Skills:              []string{"Go", "PostgreSQL", "Kubernetes", "gRPC", "AWS"},
		WorkExperience: []structuring.WorkExperience{{
			Company:          "Acme",
			Position:         "Senior Engineer",
			Duration:         "2021 - Present",
			Location:         "Remote",
			Responsibilities: []string{"Built billing pipeline", "Cut p99 latency by 40%"},
		}},
		Projects: []structuring.Project{{
			Title:        "resumectl",
			Technologies: []string{"Go"},
			Description:  "CLI for resume templating",
			Link:         "https://example.com/resumectl",
		}},
		Education: []structuring.Education{{
			Degree:             "BSc Computer Science",
			Institution:        "TU Berlin",
			GraduationYear:     "2016",
			RelevantCoursework: []string{"Distributed Systems"},
		}},
		Certifications: []structuring.Certification{{
			Name:   "CKA",
			Issuer: "CNCF",
			Date:   "2023",
		}},
		ATSScore: 82,
		Feedback: []string{"Quantify impact", "Add leadership examples", "Mirror JD keywords"},
	}
}
