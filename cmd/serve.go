package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-roster/internal/config"
	"github.com/kozaktomas/face-roster/internal/fingerprint"
	"github.com/kozaktomas/face-roster/internal/match"
	"github.com/kozaktomas/face-roster/internal/roster"
	"github.com/kozaktomas/face-roster/internal/web"
	"github.com/kozaktomas/face-roster/internal/web/handlers"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recognition server",
	Long: `Start the face recognition HTTP server.
The server loads the roster snapshot produced by 'face-roster build' and
answers POST /reconocer requests with roster entries matching the faces in
the submitted photo. If the snapshot is missing or unreadable the server
still starts with an empty roster and answers every request with no match.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 5000, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Float64("threshold", 0, "Similarity threshold override (percent, inclusive)")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// loadRoster loads the snapshot, degrading to an empty roster when it is
// missing or unreadable. The endpoint stays reachable either way.
func loadRoster(store *roster.Store) *roster.Roster {
	ros, err := store.Load()
	if err != nil {
		if roster.IsNotExist(err) {
			fmt.Printf("Warning: no roster snapshot at %s, run 'face-roster build' first\n", store.Path())
		} else {
			fmt.Printf("Warning: could not load roster snapshot: %v\n", err)
		}
		fmt.Println("Serving in degraded mode: every request will return no match")
		return roster.Empty()
	}
	fmt.Printf("Roster loaded with %d records\n", ros.Len())
	return ros
}

// newSearcher picks the matching strategy. Linear scan is exact and the
// default; the HNSW index is approximate and opt-in for large rosters.
func newSearcher(cfg *config.Config, ros *roster.Roster) match.Searcher {
	if cfg.Roster.UseHNSW && ros.Len() > 0 {
		fmt.Printf("Building HNSW index for %d roster embeddings...\n", ros.Len())
		return match.NewHNSW(ros.Embeddings())
	}
	return match.NewLinear(ros.Embeddings())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store := roster.NewStore(cfg.Roster.SnapshotPath)
	ros := loadRoster(store)

	threshold := cfg.Matching.Threshold
	if flagThreshold := mustGetFloat64(cmd, "threshold"); flagThreshold > 0 {
		threshold = flagThreshold
	}

	provider := fingerprint.NewClient(
		cfg.Embedding.URL,
		time.Duration(cfg.Embedding.TimeoutSeconds)*time.Second,
	)
	engine := match.NewEngine(newSearcher(cfg, ros), threshold)
	recognition := handlers.NewRecognitionHandler(
		provider, ros, engine,
		cfg.Imaging.MaxBytes, cfg.Imaging.MaxSize,
	)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(host, port, recognition)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Recognition endpoint ready on http://%s:%d/reconocer (threshold %.2f%%)\n", host, port, threshold)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
