package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"roomstatus/pkg/config"
	"roomstatus/pkg/staffauth"
)

func main() {
	var (
		baseURL   = flag.String("url", "", "api base url (defaults to http://localhost<HTTP_ADDR>)")
		roomID    = flag.String("room", "", "room id")
		statusID  = flag.String("status", "", "target status id")
		notes     = flag.String("notes", "", "free-text notes")
		bookingID = flag.String("booking", "", "optional booking id")
		staffID   = flag.String("staff-id", "dev-staff", "staff id (token subject)")
		staffName = flag.String("staff-name", "Dev Staff", "staff display name recorded as changedBy")
		secret    = flag.String("secret", "", "STAFF_JWT_SECRET used by the server")
	)
	flag.Parse()

	if *roomID == "" || *statusID == "" {
		fmt.Fprintln(os.Stderr, "missing -room or -status")
		os.Exit(2)
	}

	cfg := config.Load()
	if *baseURL == "" {
		*baseURL = defaultBaseURL(cfg.HTTPAddr)
	}
	// Prefer explicit flag, otherwise take from config/env (.env is loaded by config.Load()).
	if *secret == "" {
		*secret = cfg.Auth.StaffTokenSecret
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret (or STAFF_JWT_SECRET in env/.env)")
		os.Exit(2)
	}

	token, err := staffauth.Sign(*secret, *staffID, *staffName, cfg.Auth.StaffTokenTTL, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(2)
	}

	body, err := json.Marshal(map[string]string{
		"statusId":  *statusID,
		"notes":     *notes,
		"bookingId": *bookingID,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode body: %v\n", err)
		os.Exit(2)
	}

	url := strings.TrimSuffix(*baseURL, "/") + "/v1/rooms/" + *roomID + "/status"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "new request: %v\n", err)
		os.Exit(2)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d\n%s\n", resp.StatusCode, string(out))
}

func defaultBaseURL(httpAddr string) string {
	if strings.HasPrefix(httpAddr, ":") {
		return "http://localhost" + httpAddr
	}
	if httpAddr != "" {
		return "http://" + httpAddr
	}
	return "http://localhost:8081"
}
