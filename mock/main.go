package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
)

func main() {
	// Default port
	port := "9999"

	// Check if port is provided as command line argument
	if len(os.Args) > 1 {
		port = os.Args[1]
	}

	store := NewUserStore()

	http.HandleFunc("/signup", store.SignupHandler)
	http.HandleFunc("/token", store.TokenHandler)
	http.HandleFunc("/logout", store.LogoutHandler)
	http.HandleFunc("/recover", store.RecoverHandler)
	http.HandleFunc("/user", store.UserHandler)
	http.HandleFunc("/health", HealthHandler)

	addr := fmt.Sprintf(":%s", port)
	fmt.Printf("GoTrue Mock Server running on port %s...\n", port)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal(err)
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"version":"mock","name":"GoTrue","description":"mock identity provider"}`)
}
