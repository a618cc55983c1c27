/*
Astarviz is a single page A* path finding visualizer. The grid lives server side; the
browser paints the start, end and barriers, asks for a search, and watches the open and
closed sets grow in realtime over a websocket until the path is drawn. The search itself
is plain A* over a 4-connected grid with a Manhattan heuristic, slowed down per step so
that it can be watched. Debug mode skips the server and prints a solved layout instead.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"astarviz/models"
	"astarviz/server"
	"astarviz/session"

	"github.com/joho/godotenv"
)

var (
	dbg        *bool
	host       *string
	port       *string
	configPath *string
)

func init() {
	// Load .env file if available; its values become the flag defaults.
	if err := godotenv.Load(); err != nil {
		log.Printf("[app] .env file not found or could not be loaded: %v", err)
	}

	dbg = flag.Bool("debug", false, "debug mode: solve a small built-in layout and print it")
	host = flag.String("host", getEnvWithDefault("ASTARVIZ_HOST", ""), "The host ip")
	port = flag.String("port", getEnvWithDefault("ASTARVIZ_PORT", "8080"), "The host port")
	configPath = flag.String("config", getEnvWithDefault("ASTARVIZ_CONFIG", "./config.yaml"), "Path to the session config")
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// loadConfig reads the config file, falling back to defaults when there is none.
func loadConfig(path string) (*session.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Printf("[app] no config at %s, using defaults", path)
		return session.DefaultConfig(), nil
	}
	return session.FromYaml(path)
}

// runDebug solves the debug layout without delay and prints the result.
func runDebug(ctx context.Context) error {
	sess, err := session.New(&session.Config{
		Layout:    models.DebugLayout,
		StepDelay: "0s",
	})
	if err != nil {
		return err
	}

	sess.Show(os.Stdout)
	result, err := sess.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println()
	sess.Show(os.Stdout)
	fmt.Printf("found=%v cost=%d expanded=%d\n", result.Found, result.Cost, result.Expanded)
	return nil
}

func runApp() (err error) {
	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer appCancel()

	if *dbg {
		return runDebug(appCtx)
	}

	var cfg *session.Config
	if cfg, err = loadConfig(*configPath); err != nil {
		return
	}

	var sess *session.Session
	if sess, err = session.New(cfg); err != nil {
		return
	}

	var srv *server.Server
	if srv, err = server.NewServer(
		appCtx,
		*host+":"+*port,
		sess,
		nil,
	); err != nil {
		return
	}

	err = srv.Serve()
	return
}

func main() {
	flag.Parse()
	if err := runApp(); err != nil {
		log.Fatalln(err)
	}
}
