package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/khatrisoftware/alankar-backend/pkg/util"
)

// Prints an admin bearer token signed with ADMIN_JWT_SECRET.
//
//	go run ./cmd/admintoken -sub ops -ttl 720h
func main() {
	subject := flag.String("sub", "catalog-admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		log.Fatal("ADMIN_JWT_SECRET is not set")
	}

	token, err := util.GenerateToken(*subject, util.RoleAdmin, secret, *ttl)
	if err != nil {
		log.Fatal("Failed to generate token:", err)
	}
	fmt.Println(token)
}
