package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/cli"
	"example.com/gumshoe/internal/detective"
)

func main() {
	// 1. Parse command-line flags
	logLevel := flag.String("loglevel", "info", "Set logging level (debug, info, warn, error)")
	secretive := flag.Bool("secretive", false, "Suppress belief output, for games where opponents can see the screen")
	seed := flag.Int64("seed", 0, "Random seed (0 seeds from the clock)")
	workers := flag.Int("workers", 1, "Worker count for suggestion analysis")
	flag.Parse()

	// 2. Set up top-level dependencies (Logger)
	log := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, ForceColors: true})

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	// 3. Create the terminal host and the detective
	ui := cli.New(log, rng)
	defer ui.Close()
	opts := detective.Options{Secretive: *secretive, Workers: *workers}
	det := detective.New(ui, opts, log, rng)
	ui.Bind(det)

	// 4. Run the chosen mode
	if err := run(flag.Args(), det); err != nil {
		log.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}
}

func run(args []string, det *detective.Detective) error {
	if len(args) < 1 {
		printUsage()
		return errors.New("no command provided")
	}
	switch args[0] {
	case "assist":
		if err := det.Initialize(); err != nil {
			return err
		}
		return det.Run()
	case "demo":
		if err := det.InitializeSynthetic(demoHands(), demoEnvelope(), demoSuspects(), 1); err != nil {
			return err
		}
		return det.Run()
	default:
		printUsage()
		return fmt.Errorf("unknown command '%s'", args[0])
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  gumshoe assist")
	fmt.Println("    Play alongside a real game: describe the table and log each turn.")
	fmt.Println("  gumshoe demo")
	fmt.Println("    Watch the detective solve a fixed two-player deal by itself.")
	fmt.Println("\nFlags:")
	fmt.Println("  -loglevel debug    Enable detailed reasoning traces.")
	fmt.Println("  -secretive         Hide beliefs and diagnostics from the screen.")
	fmt.Println("  -seed N            Fix the random seed.")
	fmt.Println("  -workers N         Parallelise suggestion analysis.")
}

// A fixed two-player deal for the demo: small enough that the pool
// enumerates immediately and every decision is explainable.
func demoHands() [][]board.Card {
	return [][]board.Card{
		{0, 1, 4, 8, 10, 11, 15, 18, 20},
		{3, 5, 6, 7, 12, 13, 14, 16, 19},
	}
}

func demoEnvelope() []board.Card { return []board.Card{2, 9, 17} }

func demoSuspects() []board.Card {
	return []board.Card{board.SuspectCard(0), board.SuspectCard(3)}
}
