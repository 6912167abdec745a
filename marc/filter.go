package marc

// TagSet is a set of field tags. Tags match exactly, including case.
type TagSet map[string]struct{}

// NewTagSet returns a TagSet holding tags. Duplicates are harmless.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Filter returns a new Record with r's leader and only the fields whose tag
// is in tags, in their original order. An empty set keeps nothing; callers
// that treat "no tags" as "no filtering" must skip the call. r is not
// modified and the result carries no raw Data.
func (r Record) Filter(tags TagSet) Record {
	out := Record{
		Leader:   r.Leader,
		Fields:   make([]Field, 0, len(r.Fields)),
		Warnings: append([]error(nil), r.Warnings...),
	}
	for _, f := range r.Fields {
		if tags.Has(f.FieldTag()) {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}
