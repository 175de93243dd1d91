package main

import (
	"log"

	"github.com/MrSnakeDoc/airwave/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("airwave failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("airwave stopped with error: %v", err)
	}
}
