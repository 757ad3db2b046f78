package blogs

// HistoryEntry is the common shape of an edit-history record: the editor and the slug (or username)
// and content hash the edit replaced. Empty fields were not changed by that edit.
type HistoryEntry struct {
	Edited   Change
	Slug     string
	IpfsHash string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (b *Blog) History() []HistoryEntry {
	out := make([]HistoryEntry, len(b.EditHistory))
	for i, r := range b.EditHistory {
		out[i] = HistoryEntry{Edited: r.Edited, Slug: deref(r.OldData.Slug), IpfsHash: deref(r.OldData.IpfsHash)}
	}
	return out
}

func (p *Post) History() []HistoryEntry {
	out := make([]HistoryEntry, len(p.EditHistory))
	for i, r := range p.EditHistory {
		out[i] = HistoryEntry{Edited: r.Edited, Slug: deref(r.OldData.Slug), IpfsHash: deref(r.OldData.IpfsHash)}
	}
	return out
}

func (c *Comment) History() []HistoryEntry {
	out := make([]HistoryEntry, len(c.EditHistory))
	for i, r := range c.EditHistory {
		out[i] = HistoryEntry{Edited: r.Edited, IpfsHash: r.OldData.IpfsHash}
	}
	return out
}

func (p *Profile) History() []HistoryEntry {
	out := make([]HistoryEntry, len(p.EditHistory))
	for i, r := range p.EditHistory {
		out[i] = HistoryEntry{Edited: r.Edited, Slug: deref(r.OldData.Username), IpfsHash: deref(r.OldData.IpfsHash)}
	}
	return out
}

// FillHistory walks records in order and fills empty slug and hash fields with the last non-empty
// value seen before them. Leading records with no earlier value stay empty. records is not modified.
func FillHistory(records []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(records))
	var lastSlug, lastHash string
	for i, r := range records {
		if r.Slug == "" {
			r.Slug = lastSlug
		} else {
			lastSlug = r.Slug
		}
		if r.IpfsHash == "" {
			r.IpfsHash = lastHash
		} else {
			lastHash = r.IpfsHash
		}
		out[i] = r
	}
	return out
}
