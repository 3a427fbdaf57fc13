package model

// Degree is an ordered list of requirements.  PrimaryMajorCode separates
// in-major courses from out-of-major ones when scoring.
type Degree struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	PrimaryMajorCode string              `json:"primary_major_code"`
	DegreeType       string              `json:"degree_type"`
	CollegeCode      string              `json:"college_code"`
	Requirements     []DegreeRequirement `json:"requirements"`
}

// Requirement returns the requirement with the given label.
func (d Degree) Requirement(label string) (DegreeRequirement, bool) {
	for _, r := range d.Requirements {
		if r.Label == label {
			return r, true
		}
	}
	return DegreeRequirement{}, false
}

// UnmetRequirements returns the requirements the taken courses do not
// satisfy, in degree order.
func UnmetRequirements(reqs []DegreeRequirement, taken []Course) []DegreeRequirement {
	var out []DegreeRequirement
	for _, r := range reqs {
		if !r.SatisfiedBy(taken) {
			out = append(out, r)
		}
	}
	return out
}
