package driver

// RecordRow is a catalog record as read from the database.
type RecordRow struct {
	ID     string
	Fields map[string]string
	Attrs  map[string]string
}

// TermDoc is one vocabulary term in the mirror's terms index. The document
// ID is a hash of the term because the engine restricts ID characters.
type TermDoc struct {
	ID   string `json:"id"`
	Term string `json:"term"`
}

// MirrorSearchRequest is one search pass against the mirror's records
// index. SearchFields restricts matching to those attributes, which is how
// query-time field boosting is realized one tier at a time.
type MirrorSearchRequest struct {
	Query        string
	Filter       string
	SearchFields []string
	Limit        int
	Highlight    bool
	PreTag       string
	PostTag      string
}

// MirrorHitDriver is one raw hit from the mirror engine.
type MirrorHitDriver struct {
	Document  map[string]interface{}
	Score     float64
	Formatted map[string]interface{}
}

// TermHitDriver is one raw hit from the mirror's terms index.
type TermHitDriver struct {
	Term  string
	Score float64
}

// DriverError represents an error from the driver layer.
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}
