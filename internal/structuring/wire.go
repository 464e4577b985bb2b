package structuring

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// text accepts a JSON string, number, bool or null where the model should have sent a string.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*t = text(data)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = text(n.String())
		return nil
	}
}

type wireResume struct {
	Name                text                 `json:"name"`
	Email               text                 `json:"email"`
	Phone               text                 `json:"phone"`
	Location            text                 `json:"location"`
	ProfessionalSummary text                 `json:"professional_summary"`
	Skills              []text               `json:"skills"`
	WorkExperience      []wireWorkExperience `json:"work_experience"`
	Projects            []wireProject        `json:"projects"`
	Education           []wireEducation      `json:"education"`
	Certifications      []wireCertification  `json:"certifications"`
	ATSScore            json.Number          `json:"ats_score"`
	Feedback            []text               `json:"feedback"`
}

type wireWorkExperience struct {
	Company          text   `json:"company"`
	Position         text   `json:"position"`
	Duration         text   `json:"duration"`
	Location         text   `json:"location"`
	Responsibilities []text `json:"responsibilities"`
}

type wireProject struct {
	Title        text   `json:"title"`
	Technologies []text `json:"technologies"`
	Description  text   `json:"description"`
	Link         text   `json:"link"`
}

type wireEducation struct {
	Degree             text   `json:"degree"`
	Institution        text   `json:"institution"`
	GraduationYear     text   `json:"graduation_year"`
	Location           text   `json:"location"`
	RelevantCoursework []text `json:"relevant_coursework"`
}

type wireCertification struct {
	Name   text `json:"name"`
	Issuer text `json:"issuer"`
	Date   text `json:"date"`
	Expiry text `json:"expiry"`
}

func texts(in []text) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = string(t)
	}
	return out
}

func (w wireResume) toResume(score int) Resume {
	r := Resume{
		Name:                string(w.Name),
		Email:               string(w.Email),
		Phone:               string(w.Phone),
		Location:            string(w.Location),
		ProfessionalSummary: string(w.ProfessionalSummary),
		Skills:              texts(w.Skills),
		WorkExperience:      make([]WorkExperience, len(w.WorkExperience)),
		Projects:            make([]Project, len(w.Projects)),
		Education:           make([]Education, len(w.Education)),
		Certifications:      make([]Certification, len(w.Certifications)),
		ATSScore:            score,
		Feedback:            texts(w.Feedback),
	}
	for i, e := range w.WorkExperience {
		r.WorkExperience[i] = WorkExperience{
			Company:          string(e.Company),
			Position:         string(e.Position),
			Duration:         string(e.Duration),
			Location:         string(e.Location),
			Responsibilities: texts(e.Responsibilities),
		}
	}
	for i, p := range w.Projects {
		r.Projects[i] = Project{
			Title:        string(p.Title),
			Technologies: texts(p.Technologies),
			Description:  string(p.Description),
			Link:         string(p.Link),
		}
	}
	for i, e := range w.Education {
		r.Education[i] = Education{
			Degree:             string(e.Degree),
			Institution:        string(e.Institution),
			GraduationYear:     string(e.GraduationYear),
			Location:           string(e.Location),
			RelevantCoursework: texts(e.RelevantCoursework),
		}
	}
	for i, c := range w.Certifications {
		r.Certifications[i] = Certification{
			Name:   string(c.Name),
			Issuer: string(c.Issuer),
			Date:   string(c.Date),
			Expiry: string(c.Expiry),
		}
	}
	return r
}

// integerScore parses an integer-valued JSON number such as 85 or 85.0.
func integerScore(n json.Number) (int, bool) {
	if n == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(n.String()); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
