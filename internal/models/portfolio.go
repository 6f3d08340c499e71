package models

// Portfolio is the structured record assembled from a resume.
// A nil pointer or nil slice means the field was not determined, which is
// distinct from a present but empty value.
type Portfolio struct {
	Name     *string `json:"name,omitzero"`
	Title    *string `json:"title,omitzero"`
	Email    *string `json:"email,omitzero" binding:"omitempty,email"`
	Phone    *string `json:"phone,omitzero"`
	Location *string `json:"location,omitzero"`
	Website  *string `json:"website,omitzero" binding:"omitempty,url"`
	About    *string `json:"about,omitzero"`

	Experience []Experience `json:"experience,omitzero" binding:"omitempty,dive"`
	Education  []Education  `json:"education,omitzero" binding:"omitempty,dive"`
	Skills     []string     `json:"skills,omitzero"`
	Projects   []Project    `json:"projects,omitzero" binding:"omitempty,dive"`
}

// Experience is one job in the work history.
type Experience struct {
	Position    string   `json:"position" binding:"required"`
	Company     string   `json:"company" binding:"required"`
	Duration    string   `json:"duration"`
	Description []string `json:"description"`
}

// Education is one degree or course of study.
type Education struct {
	Degree      string  `json:"degree" binding:"required"`
	Institution string  `json:"institution" binding:"required"`
	Duration    string  `json:"duration"`
	Description *string `json:"description,omitzero"`
}

// Project is one portfolio project.
type Project struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Link        *string `json:"link,omitzero" binding:"omitempty,url"`
}

// PortfolioRecord is a stored portfolio together with its identity and timestamps.
type PortfolioRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Data      Portfolio `json:"data"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// Upload is a raw resume document received at the system boundary.
type Upload struct {
	FileName  string
	MediaType string
	Size      int64
	Data      []byte
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Populated reports which top-level fields of p are present.
func (p Portfolio) Populated() []string {
	var fields []string
	add := func(name string, ok bool) {
		if ok {
			fields = append(fields, name)
		}
	}
	add("name", p.Name != nil)
	add("title", p.Title != nil)
	add("email", p.Email != nil)
	add("phone", p.Phone != nil)
	add("location", p.Location != nil)
	add("website", p.Website != nil)
	add("about", p.About != nil)
	add("experience", p.Experience != nil)
	add("education", p.Education != nil)
	add("skills", p.Skills != nil)
	add("projects", p.Projects != nil)
	return fields
}

// Clone returns a deep copy of p. Absent fields stay absent.
func (p Portfolio) Clone() Portfolio {
	out := p
	out.Name = cloneString(p.Name)
	out.Title = cloneString(p.Title)
	out.Email = cloneString(p.Email)
	out.Phone = cloneString(p.Phone)
	out.Location = cloneString(p.Location)
	out.Website = cloneString(p.Website)
	out.About = cloneString(p.About)

	if p.Experience != nil {
		out.Experience = make([]Experience, len(p.Experience))
		for i, e := range p.Experience {
			if e.Description != nil {
				e.Description = append([]string{}, e.Description...)
			}
			out.Experience[i] = e
		}
	}
	if p.Education != nil {
		out.Education = make([]Education, len(p.Education))
		for i, e := range p.Education {
			e.Description = cloneString(e.Description)
			out.Education[i] = e
		}
	}
	if p.Skills != nil {
		out.Skills = append([]string{}, p.Skills...)
	}
	if p.Projects != nil {
		out.Projects = make([]Project, len(p.Projects))
		for i, pr := range p.Projects {
			pr.Link = cloneString(pr.Link)
			out.Projects[i] = pr
		}
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
