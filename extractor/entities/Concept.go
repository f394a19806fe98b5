package entities

// Concept is one drug concept returned by the RxNav related-concepts
// endpoint, identified by its RxCUI.
type Concept struct {
	RxCUI string `json:"rxcui"`
	Name  string `json:"name"`
	TTY   string `json:"tty"`
}
