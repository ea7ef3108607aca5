package cache

import "strings"

// QueryKey identifies one cached collection: the full task list or the
// result of one search.
type QueryKey struct {
	text string
}

// AllTasks is the key of the unfiltered task list.
func AllTasks() QueryKey {
	return QueryKey{}
}

// Search is the key of a text search. A blank search is AllTasks.
func Search(text string) QueryKey {
	return QueryKey{text: strings.TrimSpace(text)}
}

// Text returns the search text, empty for AllTasks.
func (k QueryKey) Text() string {
	return k.text
}

// IsAll reports whether k is the unfiltered list.
func (k QueryKey) IsAll() bool {
	return k.text == ""
}

func (k QueryKey) String() string {
	if k.IsAll() {
		return "todos"
	}
	return "todos:" + k.text
}
