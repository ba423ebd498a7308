package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Small operator utility: checks the bot's health endpoint and summarizes
// the last finished cycle.

func main() {
	base := flag.String("addr", "http://localhost:8080", "bot base URL")
	flag.Parse()

	fmt.Println("barbell-bot Health Check Utility")
	fmt.Println("--------------------------------")

	client := &http.Client{Timeout: 5 * time.Second}

	if err := checkHealth(client, *base+"/health"); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Println("Service is healthy!")

	if err := summarizeLastCycle(client, *base+"/cycle"); err != nil {
		log.Fatalf("Cycle check failed: %v", err)
	}
}

func checkHealth(client *http.Client, url string) error {
	res, err := client.Get(url)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return nil
}

func summarizeLastCycle(client *http.Client, url string) error {
	res, err := client.Get(url)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		fmt.Println("No cycle has completed yet.")
		return nil
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	var cycle struct {
		Time   time.Time `json:"time"`
		Prices []any     `json:"prices"`
		Trades []any     `json:"trades"`
	}
	if err := json.NewDecoder(res.Body).Decode(&cycle); err != nil {
		return err
	}

	fmt.Printf("Last cycle: %s\n", cycle.Time.Format(time.RFC3339))
	fmt.Printf("  price samples: %d\n", len(cycle.Prices))
	fmt.Printf("  trades:        %d\n", len(cycle.Trades))
	return nil
}
