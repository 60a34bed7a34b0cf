package domain

// Record is the searchable catalog entity. Text fields are searchable and
// weighted; attributes are opaque values used only as equality filters.
// Records are owned by the primary store; this core only derives from them.
type Record struct {
	id     string
	fields map[string]string
	attrs  map[string]string
}

func NewRecord(id string, fields, attrs map[string]string) (*Record, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Msg: "record ID cannot be empty"}
	}
	if fields == nil {
		fields = map[string]string{}
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Record{id: id, fields: fields, attrs: attrs}, nil
}

func (r *Record) ID() string {
	return r.id
}

func (r *Record) Fields() map[string]string {
	return r.fields
}

func (r *Record) Field(name string) string {
	return r.fields[name]
}

func (r *Record) Attrs() map[string]string {
	return r.attrs
}

func (r *Record) Attr(name string) (string, bool) {
	v, ok := r.attrs[name]
	return v, ok
}
