// Package roster holds the wanted-persons roster: the record types, the
// immutable in-memory view served at runtime, and the snapshot store the
// builder writes and the server reads.
package roster

import "math"

// Person is one roster record. The JSON tags match the dataset columns and
// the snapshot wire format; identity fields are passed through verbatim.
type Person struct {
	ID       string    `json:"id"`
	Name     string    `json:"nombre"`
	Sex      string    `json:"sexo"`
	Location string    `json:"lugar_rq"`
	Offense  string    `json:"delito"`
	Reward   string    `json:"recompensa"`
	Encoding []float32 `json:"encoding"`
}

// MatchedPerson is the external projection of a Person: identity fields plus
// the similarity percentage. The embedding never leaves the process.
type MatchedPerson struct {
	ID         string  `json:"id"`
	Name       string  `json:"nombre"`
	Sex        string  `json:"sexo"`
	Location   string  `json:"lugar_rq"`
	Offense    string  `json:"delito"`
	Reward     string  `json:"recompensa"`
	Similarity float64 `json:"porcentaje_parecido"`
}

// Matched projects the person into its response shape, rounding the
// similarity percentage to two decimal places.
func (p Person) Matched(similarity float64) MatchedPerson {
	return MatchedPerson{
		ID:         p.ID,
		Name:       p.Name,
		Sex:        p.Sex,
		Location:   p.Location,
		Offense:    p.Offense,
		Reward:     p.Reward,
		Similarity: math.Round(similarity*100) / 100,
	}
}
