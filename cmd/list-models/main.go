// Command list-models prints the Gemini models that support generateContent.
// Useful when a key loses access to the configured model.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const modelsEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

type modelList struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		log.Fatal("GOOGLE_API_KEY is required")
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(modelsEndpoint + "?key=" + url.QueryEscape(apiKey))
	if err != nil {
		log.Fatalf("fetch models: %v", err)
	}
	defer resp.Body.Close()

	var list modelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		log.Fatalf("decode response: %v", err)
	}
	if list.Error != nil {
		log.Fatalf("api error: %s", list.Error.Message)
	}

	fmt.Println("Models supporting generateContent:")
	for _, m := range list.Models {
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				fmt.Println("  " + m.Name)
				break
			}
		}
	}
}
