package models

// Topic represents one study module (modulo) of one certification exam (prova).
// The (modulo, prova) pair is the only identity; duplicates are kept as received.
type Topic struct {
	Modulo string `json:"modulo" db:"modulo"`
	Prova  string `json:"prova" db:"prova"`
}
