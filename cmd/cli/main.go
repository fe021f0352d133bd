package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"recordmoa/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

type recordListResponse struct {
	Total        int             `json:"total"`
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	VisiblePages []int           `json:"visible_pages"`
	Items        []models.Record `json:"items"`
}

type insightsResponse struct {
	Monthly []models.MonthlyBucket `json:"monthly"`
	Insight models.Insight         `json:"insight"`
}

func main() {
	global := flag.NewFlagSet("recordmoa", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "records":
		handleRecords(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "stats":
		handleStats(ctx, client, *baseURL, *tokenPath, sub)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		name := fs.String("name", "", "display name")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password, "name": *name}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and logged in")
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "logout":
		token := mustLoadToken(tokenPath)
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/logout", token, nil, nil); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		_ = os.Remove(tokenPath)
		fmt.Println("logged out")
	default:
		fmt.Println("usage: recordmoa auth [register|login|logout]")
		os.Exit(1)
	}
}

func handleRecords(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustLoadToken(tokenPath)

	switch sub {
	case "list":
		fs := flag.NewFlagSet("records list", flag.ExitOnError)
		category := fs.String("category", "all", "category filter (all|movie|book|place)")
		q := fs.String("q", "", "search query")
		rng := fs.String("range", "all", "date range (all|1m|3m|6m|1y)")
		sortOpt := fs.String("sort", "newest", "sort option")
		page := fs.Int("page", 1, "page number")
		_ = fs.Parse(args)

		params := url.Values{}
		params.Set("category", *category)
		params.Set("range", *rng)
		params.Set("sort", *sortOpt)
		params.Set("page", strconv.Itoa(*page))
		if *q != "" {
			params.Set("q", *q)
		}

		var resp recordListResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/records?"+params.Encode(), token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}

		fmt.Printf("%d records (page %d/%d)\n", resp.Total, resp.Page, resp.TotalPages)
		for _, rec := range resp.Items {
			fmt.Printf("  [%s] %s  %s  (%s)\n", rec.Category, stars(rec.Rating), rec.Title, rec.CreatedAt.Format("2006-01-02"))
		}
	case "get":
		if len(args) == 0 {
			log.Fatal("record id required")
		}
		var rec models.Record
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/records/"+url.PathEscape(args[0]), token, nil, &rec); err != nil {
			log.Fatalf("get failed: %v", err)
		}
		out, _ := json.MarshalIndent(rec, "", "  ")
		fmt.Println(string(out))
	case "add":
		fs := flag.NewFlagSet("records add", flag.ExitOnError)
		category := fs.String("category", "", "movie|book|place")
		title := fs.String("title", "", "title")
		rating := fs.Int("rating", 0, "rating 1-5")
		review := fs.String("review", "", "review text")
		director := fs.String("director", "", "director (movie)")
		cast := fs.String("cast", "", "comma-separated cast (movie)")
		author := fs.String("author", "", "author (book)")
		publisher := fs.String("publisher", "", "publisher (book)")
		location := fs.String("location", "", "location (place)")
		_ = fs.Parse(args)

		if *category == "" || *title == "" || *rating == 0 {
			log.Fatal("category, title, and rating are required")
		}

		payload := map[string]any{
			"category": *category,
			"title":    *title,
			"rating":   *rating,
			"review":   *review,
		}
		if *director != "" {
			payload["director"] = *director
		}
		if *cast != "" {
			payload["cast"] = strings.Split(*cast, ",")
		}
		if *author != "" {
			payload["author"] = *author
		}
		if *publisher != "" {
			payload["publisher"] = *publisher
		}
		if *location != "" {
			payload["location"] = *location
		}

		var rec models.Record
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/records", token, payload, &rec); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		fmt.Printf("created %s\n", rec.ID)
	case "delete":
		if len(args) == 0 {
			log.Fatal("record id required")
		}
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/records/"+url.PathEscape(args[0]), token, nil, nil); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("deleted")
	default:
		fmt.Println("usage: recordmoa records [list|get|add|delete]")
		os.Exit(1)
	}
}

func handleStats(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string) {
	token := mustLoadToken(tokenPath)

	switch sub {
	case "", "summary":
		var snap models.StatsSnapshot
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/stats", token, nil, &snap); err != nil {
			log.Fatalf("stats failed: %v", err)
		}

		fmt.Printf("total: %d  avg rating: %.1f  top: %s", snap.TotalCount, snap.AvgRating, snap.TopCategory)
		if snap.LastReview != "" {
			fmt.Printf("  last: %s", snap.LastReview)
		}
		fmt.Println()
		for _, cat := range snap.Categories {
			fmt.Printf("  %-5s %3d (%d%%)  avg %.1f\n", cat.Category, cat.Count, cat.Percentage, cat.AvgRating)
		}
		fmt.Println("monthly:")
		for _, b := range snap.Monthly {
			fmt.Printf("  %s  %d reviews  avg %.1f\n", b.Label, b.Reviews, b.AvgRating)
		}
	case "insights":
		var resp insightsResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/stats/insights", token, nil, &resp); err != nil {
			log.Fatalf("insights failed: %v", err)
		}
		for _, msg := range resp.Insight.Messages {
			fmt.Println("- " + msg)
		}
	default:
		fmt.Println("usage: recordmoa stats [summary|insights]")
		os.Exit(1)
	}
}

func doJSON(ctx context.Context, client *http.Client, method, rawURL, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".recordmoa", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return fmt.Errorf("empty token in response")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(tokenData{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func mustLoadToken(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("not logged in (run: recordmoa auth login)")
	}
	var td tokenData
	if err := json.Unmarshal(b, &td); err != nil || td.Token == "" {
		log.Fatal("token file is corrupt (run: recordmoa auth login)")
	}
	return td.Token
}

func printUsage() {
	fmt.Println(`recordmoa CLI

usage:
  recordmoa [-api URL] [-token PATH] <command> [subcommand] [flags]

commands:
  auth     register | login | logout
  records  list | get | add | delete
  stats    summary | insights`)
}
