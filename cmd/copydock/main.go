package main

import (
	"context"
	"log"

	"github.com/MrSnakeDoc/copydock/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("❌ copydock failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ copydock stopped with error: %v", err)
	}
}
