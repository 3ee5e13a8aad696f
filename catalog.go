package probdoc

// Topic is a named group of problem links on the catalog page.
// Topics keep document order; that order drives export numbering.
type Topic struct {
	Name  string        `json:"name"`
	ID    string        `json:"id"`
	Links []ProblemLink `json:"links"`
}

// ProblemLink points at a single problem page.
type ProblemLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CatalogParser extracts topics from catalog page HTML.
type CatalogParser interface {
	// ParseCatalog returns topics in document order. Topics without any
	// resolvable problem link are omitted. Returns EPARSE when the page has
	// no table of contents.
	ParseCatalog(html string) ([]Topic, error)
}

// CountLinks returns the total number of links across topics.
func CountLinks(topics []Topic) int {
	var n int
	for _, t := range topics {
		n += len(t.Links)
	}
	return n
}

// SelectTopics returns the topics whose IDs are in ids, keeping catalog
// order. An empty ids selects every topic. Returns ENOTFOUND for an ID that
// matches no topic.
func SelectTopics(topics []Topic, ids []string) ([]Topic, error) {
	if len(ids) == 0 {
		return topics, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var selected []Topic
	for _, t := range topics {
		if want[t.ID] {
			selected = append(selected, t)
			delete(want, t.ID)
		}
	}
	for _, id := range ids {
		if want[id] {
			return nil, Errorf(ENOTFOUND, "topic %q not found in catalog", id)
		}
	}
	return selected, nil
}
