package model

// WSMove is a move request from a board session client.
type WSMove struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply is one applied move as recorded by a board session.
type Ply struct {
	Piece    Piece    `json:"piece"`
	From     Position `json:"from"`
	To       Position `json:"to"`
	Notation string   `json:"notation"`
	FEN      string   `json:"fen"`
}
