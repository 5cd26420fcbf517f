package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dylanjrt/garmin-workouts/internal/garmin"
	"github.com/dylanjrt/garmin-workouts/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "workout server URL (e.g. https://workouts.tail1234.ts.net)")
	list := flag.Bool("list", false, "list workouts on the server and exit")
	workoutIDs := flag.String("workout", "", "comma-separated workout ids to sync")
	all := flag.Bool("all", false, "sync every workout on the server")
	dryRun := flag.Bool("dry-run", false, "build payloads but don't send to Garmin")
	email := flag.String("email", "", "Garmin Connect email (or GARMIN_EMAIL)")
	password := flag.String("password", "", "Garmin Connect password (or GARMIN_PASSWORD)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("garmin-workouts-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: garmin-workouts-upload -server <URL> (-list | -all | -workout <ids>) [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	client := upload.NewClient(*serverURL)

	if *list {
		summaries, err := client.FetchWorkouts()
		if err != nil {
			log.Error("failed to list workouts", "error", err)
			os.Exit(1)
		}
		for _, s := range summaries {
			fmt.Printf("%s  %-30s %5dm  %d steps\n", s.ID, s.Name, s.TotalDistance, s.StepCount)
		}
		return
	}

	var ids []string
	if *workoutIDs != "" {
		for _, id := range strings.Split(*workoutIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 && !*all {
		fmt.Fprintf(os.Stderr, "Error: pass -all or -workout <ids> (or -list to browse)\n")
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}

	// Garmin session — reuse a saved token, log in if credentials given
	ctx := context.Background()
	gc, err := garmin.NewClient("", filepath.Join(homeDir, ".garmin-workouts"))
	if err != nil {
		log.Error("failed to init garmin client", "error", err)
		os.Exit(1)
	}

	user := *email
	if user == "" {
		user = os.Getenv("GARMIN_EMAIL")
	}
	pass := *password
	if pass == "" {
		pass = os.Getenv("GARMIN_PASSWORD")
	}
	if !*dryRun {
		if st := gc.Status(); !st.Authenticated {
			if user == "" || pass == "" {
				log.Error("not logged in to Garmin; pass -email/-password or set GARMIN_EMAIL/GARMIN_PASSWORD")
				os.Exit(1)
			}
			if err := gc.Login(ctx, user, pass); err != nil {
				log.Error("garmin login failed", "error", err)
				os.Exit(1)
			}
			log.Info("logged in to Garmin", "user", gc.Status().UserName)
		}
	}

	// Open state database
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".garmin-workouts-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode — payloads will be built but not sent")
	}

	uploader := upload.New(client, gc, state, *dryRun, log)
	stats, err := uploader.Run(ctx, ids)
	if err != nil {
		log.Error("sync failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("sync complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Sync Summary ===")
	fmt.Printf("  Workouts total:    %d\n", stats.WorkoutsTotal)
	fmt.Printf("  Workouts uploaded: %d\n", stats.WorkoutsUploaded)
	fmt.Printf("  Workouts skipped:  %d (unchanged)\n", stats.WorkoutsSkipped)
	fmt.Printf("  Workouts errored:  %d\n", stats.WorkoutsErrored)
	fmt.Println()
}
