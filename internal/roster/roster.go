package roster

// Roster is the immutable in-memory view of the persisted snapshot. It is
// loaded once at startup and shared read-only across request handlers, so no
// locking is needed.
type Roster struct {
	persons    []Person
	embeddings [][]float32
}

// NewRoster builds a roster from the given records. Embeddings are extracted
// once here so per-request matching works on a plain slice of vectors.
func NewRoster(persons []Person) *Roster {
	embeddings := make([][]float32, len(persons))
	for i := range persons {
		embeddings[i] = persons[i].Encoding
	}
	return &Roster{
		persons:    persons,
		embeddings: embeddings,
	}
}

// Empty returns a roster with no records, used for degraded startup when the
// snapshot is missing or unreadable.
func Empty() *Roster {
	return &Roster{}
}

// Len returns the number of roster records.
func (r *Roster) Len() int {
	return len(r.persons)
}

// Person returns the record at the given position.
func (r *Roster) Person(i int) Person {
	return r.persons[i]
}

// Embeddings returns the embedding vectors parallel to the record order.
// Callers must treat the result as read-only.
func (r *Roster) Embeddings() [][]float32 {
	return r.embeddings
}
