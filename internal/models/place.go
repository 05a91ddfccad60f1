package models

// Place is a Building prepared for display: its position parsed once and its
// name folded for case-insensitive matching.
type Place struct {
	Building
	Position  Coordinates
	SearchKey string
}
