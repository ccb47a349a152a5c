package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/billing_backend/utils"
)

// issue-token prints a bearer token for local testing. It signs with API_SECRET.
//
//   go run ./cmd/issue-token -business-id=... -user-id=dev
func main() {
	businessID := flag.String("business-id", "", "Required: business id the token is scoped to")
	userID := flag.String("user-id", "dev", "User id claim")
	role := flag.String("role", "owner", "Role claim")
	flag.Parse()

	if strings.TrimSpace(*businessID) == "" {
		fmt.Fprintln(os.Stderr, "--business-id is required")
		os.Exit(1)
	}
	if os.Getenv("API_SECRET") == "" {
		fmt.Fprintln(os.Stderr, "API_SECRET is not set")
		os.Exit(1)
	}
	token, err := utils.JwtGenerate(strings.TrimSpace(*userID), strings.TrimSpace(*businessID), strings.TrimSpace(*role))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
