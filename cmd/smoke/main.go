// Command smoke exercises a running server end to end. Set SMOKE_BASE_URL
// and SMOKE_SUBJECT to point it at a deployment.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	baseURL := envOr("SMOKE_BASE_URL", defaultBaseURL)
	subject := envOr("SMOKE_SUBJECT", "smoke-subject")
	client := &http.Client{Timeout: 60 * time.Second}

	fmt.Println("Starting smoke test...")

	steps := []struct {
		name    string
		method  string
		path    string
		payload any
	}{
		{"health", http.MethodGet, "/healthz", nil},
		{"mood", http.MethodGet, "/subjects/" + subject + "/mood", nil},
		{"health risk", http.MethodGet, "/subjects/" + subject + "/health-risk", nil},
		{"daily summary", http.MethodGet, "/subjects/" + subject + "/summary/daily", nil},
		{"weekly recap", http.MethodGet, "/subjects/" + subject + "/summary/weekly", nil},
		{"ask", http.MethodPost, "/subjects/" + subject + "/ask", map[string]string{
			"question": "When did I last see my grandson?",
		}},
		{"follow-up", http.MethodPost, "/follow-up", map[string]any{
			"memory": map[string]any{"elder_id": subject, "raw_text": "Went to the lake with my grandson.", "type": "story"},
		}},
	}

	for i, step := range steps {
		fmt.Printf("%d. %s...\n", i+1, step.name)
		if !sendRequest(client, step.method, baseURL+step.path, step.payload) {
			fmt.Printf("FAILED: %s\n", step.name)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", step.name)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func sendRequest(client *http.Client, method, url string, payload any) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
