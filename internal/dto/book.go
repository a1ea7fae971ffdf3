package dto

type Book struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Grade    string `json:"grade"`
	CoverURL string `json:"coverUrl,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

type MiniGame struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Color   string `json:"color"`
	Icon    string `json:"icon"`
	Players int    `json:"players"`
}

type MiniGamesResponse struct {
	Success   bool       `json:"success"`
	MiniGames []MiniGame `json:"miniGames"`
}
