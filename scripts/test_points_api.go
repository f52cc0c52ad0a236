package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp, respBody, nil
}

func decode(body []byte) map[string]interface{} {
	var m map[string]interface{}
	_ = json.Unmarshal(body, &m)
	return m
}

func login(email, password string) string {
	_, body, err := sendRequest("POST", "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		color.Red("Login failed: %v", err)
		os.Exit(1)
	}
	data, _ := decode(body)["data"].(map[string]interface{})
	token, _ := data["access_token"].(string)
	if token == "" {
		color.Red("Login for %s returned no token:", email)
		prettyPrint(decode(body))
		os.Exit(1)
	}
	return token
}

func main() {
	color.Cyan("🚀 Starting Points Ledger API Test\n")

	// ---------- 1. Register a fresh user ----------
	color.Yellow("\n[USER] 1. Register")
	email := fmt.Sprintf("walkthrough+%d@pagecraft.io", time.Now().Unix())
	resp, body, err := sendRequest("POST", "/auth/register", "", map[string]string{
		"display_name": "Walkthrough User",
		"email":        email,
		"password":     "walkthrough123",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	userToken := login(email, "walkthrough123")

	// ---------- 2. Balance status after the register bonus ----------
	color.Yellow("\n[USER] 2. Balance Status")
	resp, body, err = sendRequest("GET", "/points", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// ---------- 3. Admin cuts a recharge code ----------
	color.Yellow("\n[ADMIN] 3. Generate Recharge Code")
	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@pagecraft.io"
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin12345"
	}
	adminToken := login(adminEmail, adminPassword)

	resp, body, err = sendRequest("POST", "/admin/recharge-codes", adminToken, map[string]interface{}{
		"count":              1,
		"points":             200,
		"points_expire_days": 30,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	data, _ := decode(body)["data"].(map[string]interface{})
	codes, _ := data["codes"].([]interface{})
	if len(codes) == 0 {
		color.Red("No code returned, aborting")
		os.Exit(1)
	}
	code := codes[0].(string)

	// ---------- 4. User redeems it ----------
	color.Yellow("\n[USER] 4. Redeem Code %s", code)
	resp, body, err = sendRequest("POST", "/points/recharge", userToken, map[string]string{"code": code})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// ---------- 5. Queue a generation job ----------
	color.Yellow("\n[USER] 5. Generate 2 Pages")
	resp, body, err = sendRequest("POST", "/generate", userToken, map[string]interface{}{
		"pages":       2,
		"description": "landing page walkthrough",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	data, _ = decode(body)["data"].(map[string]interface{})
	jobId, _ := data["job_id"].(string)

	// ---------- 6. Poll until the worker settles the job ----------
	color.Yellow("\n[USER] 6. Poll Job %s", jobId)
	for i := 0; i < 20; i++ {
		time.Sleep(500 * time.Millisecond)
		resp, body, err = sendRequest("GET", "/generations/"+jobId, userToken, nil)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		data, _ = decode(body)["data"].(map[string]interface{})
		status, _ := data["status"].(string)
		fmt.Printf("  status=%s pages_completed=%v\n", status, data["pages_completed"])
		if status != "queued" && status != "running" {
			break
		}
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// ---------- 7. Ledger history ----------
	color.Yellow("\n[USER] 7. Transactions")
	resp, body, err = sendRequest("GET", "/points/transactions", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	color.Cyan("\n✅ Walkthrough finished")
}
