package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"tourstaff-service/internal/infrastructure/oauth"
	"tourstaff-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const redirectURL = "http://localhost:8090/oauth2callback"

// Prints a refresh token covering the Sheets and FCM scopes used by the server
func main() {
	godotenv.Load()

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Fatal("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	auth := oauth.NewGoogleOAuth(clientID, clientSecret, "", logger.NewLogger("info")).WithRedirectURL(redirectURL)
	state := uuid.NewString()

	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		token, err := auth.ExchangeCode(context.Background(), code)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to exchange code: %v", err), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nRefresh Token: %s\n\n", token.RefreshToken)

		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	authURL := auth.GenerateAuthURL(state)
	fmt.Printf("Open this URL in your browser:\n%s\n", authURL)

	log.Fatal(http.ListenAndServe(":8090", nil))
}
