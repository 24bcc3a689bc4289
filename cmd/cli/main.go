package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "job":
		handleJob(args)
	case "chat":
		handleChat(args)
	case "inbox":
		handleInbox(args)
	case "mechanic":
		handleMechanic(args)
	case "stats":
		handleStats(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc auth <login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleJob(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc job <list|create|get|accept|complete|pay|cancel>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listJobs(args[1:])
	case "create":
		createJob(args[1:])
	case "get":
		getJob(args[1:])
	case "accept":
		jobAction(args[1:], "accept")
	case "complete":
		jobAction(args[1:], "complete")
	case "pay":
		payJob(args[1:])
	case "cancel":
		jobAction(args[1:], "cancel")
	default:
		fmt.Printf("unknown job command: %s\n", subCmd)
	}
}

func handleChat(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc chat <list|send>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listMessages(args[1:])
	case "send":
		sendMessage(args[1:])
	default:
		fmt.Printf("unknown chat command: %s\n", subCmd)
	}
}

func handleInbox(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc inbox <list|read>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listNotifications()
	case "read":
		markNotificationsRead()
	default:
		fmt.Printf("unknown inbox command: %s\n", subCmd)
	}
}

func handleMechanic(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc mechanic <list|verify>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listMechanics()
	case "verify":
		verifyMechanic(args[1:])
	default:
		fmt.Printf("unknown mechanic command: %s\n", subCmd)
	}
}

func handleStats(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc stats <earnings|platform>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "earnings":
		showEarnings(args[1:])
	case "platform":
		showPlatform()
	default:
		fmt.Printf("unknown stats command: %s\n", subCmd)
	}
}

// Auth commands
func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name (first login only)")
	role := fs.String("role", "", "CUSTOMER, MECHANIC or ADMIN (first login only)")
	skills := fs.String("skills", "", "comma separated skills (mechanics, first login only)")

	fs.Parse(args)

	if *email == "" {
		fmt.Println("Error: email is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{"email": *email}
	if *name != "" {
		payload["name"] = *name
	}
	if *role != "" {
		payload["role"] = strings.ToUpper(*role)
	}
	if *skills != "" {
		payload["skills"] = strings.Split(*skills, ",")
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
		if registered, _ := result["registered"].(bool); registered {
			fmt.Printf("✓ Registered and logged in as: %s\n", *email)
		} else {
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	req, _ := http.NewRequest("POST", getAPIURL()+"/logout", nil)
	addAuthHeader(req)
	if resp, err := http.DefaultClient.Do(req); err == nil {
		resp.Body.Close()
	}
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Job commands
func listJobs(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status (e.g. OPEN)")
	category := fs.String("category", "", "filter by category")
	query := fs.String("q", "", "free text search")
	mine := fs.String("mine", "", "customer or mechanic, scope to own jobs")

	fs.Parse(args)

	url := getAPIURL() + "/jobs?"
	for k, v := range map[string]string{"status": *status, "category": *category, "q": *query, "mine": *mine} {
		if v != "" {
			url += k + "=" + v + "&"
		}
	}

	req, _ := http.NewRequest("GET", strings.TrimRight(url, "?&"), nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var jobs []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&jobs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tLOCATION\tCREATED")
	for _, j := range jobs {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", j["id"], j["status"], j["category"], j["location"], j["createdAt"])
	}
	w.Flush()
}

func createJob(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	category := fs.String("category", "", "job category")
	description := fs.String("description", "", "what is wrong")
	location := fs.String("location", "", "suburb, state")
	make_ := fs.String("make", "", "vehicle make")
	model := fs.String("model", "", "vehicle model")
	year := fs.String("year", "", "vehicle year")
	rego := fs.String("rego", "", "vehicle rego (optional)")

	fs.Parse(args)

	if *category == "" || *description == "" || *location == "" {
		fmt.Println("Error: category, description and location are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"category":    *category,
		"description": *description,
		"location":    *location,
		"vehicle": map[string]string{
			"make":  *make_,
			"model": *model,
			"year":  *year,
			"rego":  *rego,
		},
	}
	result, ok := postJSON("/jobs", payload, 201)
	if ok {
		fmt.Printf("✓ Job posted: %v\n", result["id"])
	}
}

func getJob(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc job get <job-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/jobs/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var job map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&job)
	pretty, _ := json.MarshalIndent(job, "", "  ")
	fmt.Println(string(pretty))
}

func jobAction(args []string, action string) {
	if len(args) < 1 {
		fmt.Printf("Usage: autodoc job %s <job-id>\n", action)
		return
	}
	result, ok := postJSON("/jobs/"+args[0]+"/"+action, nil, 200)
	if ok {
		fmt.Printf("✓ Job %v is now %v\n", result["id"], result["status"])
	}
}

func payJob(args []string) {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	amount := fs.Float64("amount", 0, "final price in dollars")

	if len(args) < 1 {
		fmt.Println("Usage: autodoc job pay <job-id> -amount <dollars>")
		return
	}
	jobID := args[0]
	fs.Parse(args[1:])

	if *amount <= 0 {
		fmt.Println("Error: a positive -amount is required")
		return
	}

	result, ok := postJSON("/jobs/"+jobID+"/pay", map[string]float64{"amount": *amount}, 200)
	if ok {
		fmt.Printf("✓ Paid $%.2f, job %v closed\n", *amount, result["id"])
	}
}

// Chat commands
func listMessages(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc chat list <job-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/jobs/"+args[0]+"/messages", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var messages []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&messages)
	for _, m := range messages {
		fmt.Printf("[%v] %v: %v\n", m["timestamp"], m["senderId"], m["content"])
	}
}

func sendMessage(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	message := fs.String("message", "", "message text")

	if len(args) < 1 {
		fmt.Println("Usage: autodoc chat send <job-id> -message <text>")
		return
	}
	jobID := args[0]
	fs.Parse(args[1:])

	if *message == "" {
		fmt.Println("Error: -message is required")
		return
	}

	if _, ok := postJSON("/jobs/"+jobID+"/messages", map[string]string{"content": *message}, 201); ok {
		fmt.Println("✓ Message sent")
	}
}

// Inbox commands
func listNotifications() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/notifications", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var entries []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&entries)
	for _, n := range entries {
		marker := " "
		if read, _ := n["read"].(bool); !read {
			marker = "*"
		}
		fmt.Printf("%s [%v] %v: %v\n", marker, n["type"], n["title"], n["message"])
	}
}

func markNotificationsRead() {
	if result, ok := postJSON("/notifications/read", nil, 200); ok {
		fmt.Printf("✓ Marked %v notifications read\n", result["marked"])
	}
}

// Mechanic commands
func listMechanics() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/mechanics", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var mechanics []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&mechanics)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVERIFIED")
	for _, m := range mechanics {
		verified := false
		if profile, ok := m["mechanicProfile"].(map[string]interface{}); ok {
			verified, _ = profile["verified"].(bool)
		}
		fmt.Fprintf(w, "%v\t%v\t%v\n", m["id"], m["name"], verified)
	}
	w.Flush()
}

func verifyMechanic(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: autodoc mechanic verify <mechanic-id>")
		return
	}
	if result, ok := postJSON("/mechanics/"+args[0]+"/verify", nil, 200); ok {
		fmt.Printf("✓ Mechanic %v verified\n", result["id"])
	}
}

// Stats commands
func showEarnings(args []string) {
	fs := flag.NewFlagSet("earnings", flag.ExitOnError)
	mechanicID := fs.String("mechanic", "", "mechanic id (admins only, defaults to self)")
	fs.Parse(args)

	url := getAPIURL() + "/analytics/earnings"
	if *mechanicID != "" {
		url += "?mechanicId=" + *mechanicID
	}

	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var report map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&report)
	fmt.Printf("Total earnings: $%v over %v jobs\n", report["totalEarnings"], report["jobsCompleted"])
	if monthly, ok := report["monthly"].([]interface{}); ok {
		for _, bucket := range monthly {
			if b, ok := bucket.(map[string]interface{}); ok {
				fmt.Printf("  %v %v: $%v\n", b["month"], b["year"], b["amount"])
			}
		}
	}
}

func showPlatform() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/analytics/platform", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var stats map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&stats)
	pretty, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(pretty))
}

// Helper functions
func postJSON(path string, payload interface{}, wantStatus int) (map[string]interface{}, bool) {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest("POST", getAPIURL()+path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != wantStatus {
		fmt.Printf("✗ Request failed (%d): %v\n", resp.StatusCode, result["error"])
		return result, false
	}
	return result, true
}

func printAPIError(resp *http.Response) {
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	fmt.Printf("✗ Request failed (%d): %v\n", resp.StatusCode, result["error"])
}

func getAPIURL() string {
	if url := os.Getenv("AUTODOC_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.autodoc/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.autodoc", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`AutoDoc CLI

Usage:
  autodoc <command> [options]

Commands:
  auth      Authentication (login, logout, who)
  job       Job operations (list, create, get, accept, complete, pay, cancel)
  chat      Per-job chat (list, send)
  inbox     Notifications (list, read)
  mechanic  Mechanic directory (list, verify) - verify requires admin
  stats     Analytics (earnings, platform) - platform requires admin
  help      Show this help message

Environment Variables:
  AUTODOC_API    API endpoint (default: http://localhost:8080/api)

Examples:
  autodoc auth login -email sarah@example.com
  autodoc job list -status OPEN -q toyota
  autodoc job create -category "General Repair" -description "Brakes squeal" -location "Prospect, SA" -make Toyota -model Corolla -year 2018
  autodoc job pay job_123 -amount 250
`)
}
