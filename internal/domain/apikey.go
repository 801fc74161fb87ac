package domain

// APIKey identifies an authorized caller. Keys live in their own table and
// are consulted by the auth middleware before any transaction endpoint runs.
type APIKey struct {
	ID       int64  `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Account  string `json:"account"`
}
