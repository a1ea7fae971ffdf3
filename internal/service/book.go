package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/VidyaQuest-Labs/portal/internal/dto"
)

// BookService serves the static book catalog, loaded once at startup.
type BookService struct {
	books []dto.Book
}

func NewBookService(path string) (*BookService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read book catalog: %w", err)
	}

	var books []dto.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse book catalog: %w", err)
	}

	return &BookService{books: books}, nil
}

func (s *BookService) List() []dto.Book {
	return s.books
}

// MiniGames returns the static mini-game catalog shown on the dashboard
func MiniGames() []dto.MiniGame {
	return []dto.MiniGame{
		{ID: 1, Title: "Math Challenge", Color: "from-indigo-500 to-purple-500", Icon: "🧮", Players: 120},
		{ID: 2, Title: "Word Puzzle", Color: "from-green-400 to-teal-500", Icon: "🧩", Players: 85},
		{ID: 3, Title: "Memory Match", Color: "from-yellow-400 to-orange-500", Icon: "🃏", Players: 60},
		{ID: 4, Title: "Reaction Test", Color: "from-pink-400 to-red-500", Icon: "⚡", Players: 42},
	}
}
