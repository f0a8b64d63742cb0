// Flotech Forward Receiver Example
//
// This is a minimal example of the automation endpoint that receives
// the Fireflies API key Flotech forwards on signup and sign-in.
//
// Usage:
//   go run main.go
//
// Then point Flotech at it:
//   export FORWARD_WEBHOOK_URL="http://localhost:9000/forward"

package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// ForwardPayload is the body Flotech POSTs after a user stores a key.
type ForwardPayload struct {
	FireFliesAPIKey string `json:"FireFlies_API_KEY"`
}

func main() {
	http.HandleFunc("/forward", forwardHandler)
	http.HandleFunc("/health", healthHandler)

	log.Println("Starting forward receiver on :9000")
	log.Println("Endpoint: http://localhost:9000/forward")
	log.Fatal(http.ListenAndServe(":9000", nil))
}

func forwardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload ForwardPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("Error parsing payload: %v", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if payload.FireFliesAPIKey == "" {
		http.Error(w, "Missing FireFlies_API_KEY", http.StatusBadRequest)
		return
	}

	// A real automation would register the key with its workflow here.
	// Never log the full key.
	log.Printf("Received API key (length %d)", len(payload.FireFliesAPIKey))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
