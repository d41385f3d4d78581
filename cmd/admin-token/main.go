// Command admin-token mints a signed bearer token for the ops API.
//
//	JWT_SECRET=... go run ./cmd/admin-token -sub ops@example.com -ttl 24h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

func main() {
	var (
		sub = flag.String("sub", "admin", "token subject")
		ttl = flag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	flag.Parse()

	godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  *sub,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(*ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Println(signed)
}
