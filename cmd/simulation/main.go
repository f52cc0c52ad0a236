package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Fires concurrent generation requests at a running server and checks that
// the ledger never oversells: the final balance must equal the initial
// balance minus the recorded expenses, and must never go negative.

const baseURL = "http://localhost:3000/api"

const (
	workers        = 8
	jobsPerWorker  = 5
	settleInterval = 1 * time.Second
	settleTimeout  = 60 * time.Second
)

// Simplified DTOs for the script
type loginResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type balanceResponse struct {
	Data struct {
		ValidPoints int64 `json:"valid_points"`
	} `json:"data"`
}

type transactionsResponse struct {
	Data struct {
		Transactions []struct {
			Type   string `json:"type"`
			Amount int64  `json:"amount"`
		} `json:"transactions"`
		Total int64 `json:"total"`
	} `json:"data"`
}

func request(method, url, token string, payload any) (int, []byte) {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		log.Fatalf("Error: building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Error: %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func getBalance(token string) int64 {
	code, raw := request("GET", baseURL+"/points", token, nil)
	if code != 200 {
		log.Fatalf("Error: balance check returned %d: %s", code, raw)
	}
	var res balanceResponse
	json.Unmarshal(raw, &res)
	return res.Data.ValidPoints
}

func sumExpenses(token string) int64 {
	var spent int64
	page := 1
	for {
		code, raw := request("GET", fmt.Sprintf("%s/points/transactions?type=expense&page=%d&per_page=100", baseURL, page), token, nil)
		if code != 200 {
			log.Fatalf("Error: transactions returned %d: %s", code, raw)
		}
		var res transactionsResponse
		json.Unmarshal(raw, &res)
		for _, t := range res.Data.Transactions {
			spent += t.Amount
		}
		if int64(page*100) >= res.Data.Total {
			break
		}
		page++
	}
	return spent
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	email := getEnv("SIM_EMAIL", "walkthrough@pagecraft.io")
	password := getEnv("SIM_PASSWORD", "password123")

	// 1. Login
	code, raw := request("POST", baseURL+"/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if code != 200 {
		log.Fatalf("Error: login failed (%d): %s (run scripts/test_points_api.go first or set SIM_EMAIL/SIM_PASSWORD)", code, raw)
	}
	var login loginResponse
	json.Unmarshal(raw, &login)
	token := login.Data.AccessToken

	initial := getBalance(token)
	spentBefore := sumExpenses(token)
	log.Printf("Initial balance: %d points", initial)
	log.Printf("Firing %d workers x %d single-page jobs...", workers, jobsPerWorker)

	// 2. Concurrent generation requests
	var accepted, refused int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := 0; j < jobsPerWorker; j++ {
				code, _ := request("POST", baseURL+"/generate", token, map[string]any{
					"pages":       1,
					"description": fmt.Sprintf("simulation worker %d job %d", w, j),
				})
				if code == 200 || code == 201 {
					atomic.AddInt64(&accepted, 1)
				} else {
					atomic.AddInt64(&refused, 1)
				}
			}
		}(w)
	}
	wg.Wait()
	log.Printf("Accepted: %d, refused: %d", accepted, refused)

	// 3. Wait for the render worker to settle (two stable reads in a row)
	deadline := time.Now().Add(settleTimeout)
	last := getBalance(token)
	for time.Now().Before(deadline) {
		time.Sleep(settleInterval)
		current := getBalance(token)
		if current == last {
			break
		}
		last = current
	}
	final := getBalance(token)

	// 4. Expenses recorded during this run
	spent := sumExpenses(token) - spentBefore

	// 5. Verdict
	log.Printf("Final balance: %d, expenses this run: %d", final, spent)
	if final < 0 {
		log.Fatal("❌ OVERSOLD: balance went negative")
	}
	if initial-spent != final {
		log.Fatalf("❌ MISMATCH: initial %d - spent %d = %d, but balance says %d", initial, spent, initial-spent, final)
	}
	log.Println("✅ Ledger held under concurrency: every page paid for exactly once")
}
