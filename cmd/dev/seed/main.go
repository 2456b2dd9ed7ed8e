package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"roomstatus/internal/room"
	"roomstatus/internal/store"
	"roomstatus/internal/tracking"
	"roomstatus/pkg/config"
	"roomstatus/pkg/db"
)

type seedFile struct {
	Statuses []statusSeed `yaml:"statuses"`
	Rooms    []room.Seed  `yaml:"rooms"`
}

type statusSeed struct {
	Name        string `yaml:"name"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
	Default     bool   `yaml:"default"`
}

func main() {
	path := flag.String("file", "configs/seed.yaml", "seed file with statuses and rooms")
	flag.Parse()

	raw, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read seed: %v\n", err)
		os.Exit(2)
	}
	seed, err := parseSeed(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse seed: %v\n", err)
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := tracking.NewService(store.NewPostgres(pool))
	rooms := room.NewRepository(pool)

	existing, err := svc.ListStatuses(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list statuses: %v\n", err)
		os.Exit(1)
	}
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[strings.ToLower(s.Name)] = true
	}
	for _, s := range seed.Statuses {
		if known[strings.ToLower(s.Name)] {
			fmt.Printf("status %q exists\n", s.Name)
			continue
		}
		st, err := svc.CreateStatus(ctx, tracking.StatusInput{
			Name:        s.Name,
			Color:       s.Color,
			Description: s.Description,
			IsDefault:   s.Default,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "create status %q: %v\n", s.Name, err)
			os.Exit(1)
		}
		fmt.Printf("status %q created id=%s\n", st.Name, st.ID)
	}

	for _, r := range seed.Rooms {
		id, err := rooms.Upsert(ctx, r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "upsert room %s: %v\n", r.Number, err)
			os.Exit(1)
		}
		e, err := svc.AssignDefault(ctx, id, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "assign default to room %s: %v\n", r.Number, err)
			os.Exit(1)
		}
		if e != nil {
			fmt.Printf("room %s id=%s set to default status\n", r.Number, id)
		} else {
			fmt.Printf("room %s id=%s already has a status\n", r.Number, id)
		}
	}
}

func parseSeed(raw []byte) (seedFile, error) {
	var s seedFile
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, err
	}
	defaults := 0
	for _, st := range s.Statuses {
		if strings.TrimSpace(st.Name) == "" {
			return s, fmt.Errorf("status without a name")
		}
		if st.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return s, fmt.Errorf("%d statuses marked default, at most one allowed", defaults)
	}
	for _, r := range s.Rooms {
		if strings.TrimSpace(r.Number) == "" {
			return s, fmt.Errorf("room without a number")
		}
	}
	return s, nil
}
