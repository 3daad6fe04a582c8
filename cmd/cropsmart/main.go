package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/Uddesh-18/CropSmart/internal/bootstrap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	bootstrap.Bootstrap()
}
