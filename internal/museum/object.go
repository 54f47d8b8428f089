// Package museum defines the catalog domain model shared by the remote
// client, the cache, and the presentation layer.
package museum

// Object is a single catalog entry as served by the upstream collection API.
// Objects are immutable values: they are constructed from deserialized API
// payloads and replaced wholesale on refresh, never mutated in place.
type Object struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Date        string `json:"date"`
	Medium      string `json:"medium"`
	ImageURL    string `json:"image"`
	Description string `json:"description"`
}

// DisplayTitle returns the title, or a placeholder when the upstream
// record has none.
func (o Object) DisplayTitle() string {
	if o.Title == "" {
		return "(untitled)"
	}
	return o.Title
}
