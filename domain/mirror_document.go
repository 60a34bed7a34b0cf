package domain

// MirrorDocument is the denormalized projection of a Record held in the
// mirror index. No derived vector is carried; the mirror engine builds its
// own index internally.
type MirrorDocument struct {
	ID     string
	Fields map[string]string
	Attrs  map[string]string
}

func NewMirrorDocument(r *Record) MirrorDocument {
	return MirrorDocument{
		ID:     r.ID(),
		Fields: r.Fields(),
		Attrs:  r.Attrs(),
	}
}

// MirrorHit is one ranked result from the mirror index. Highlights holds
// engine-formatted field text when highlighting was requested.
type MirrorHit struct {
	Document   MirrorDocument
	Score      float64
	Highlights map[string]string
}

// Suggestion is one fuzzy term candidate with its similarity to the query.
type Suggestion struct {
	Term       string  `json:"term"`
	Similarity float64 `json:"similarity"`
}
