package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	debugKey      = "debug"
	keystrokesKey = "keystrokes"
	typingKey     = "typing"
	latencyKey    = "latency"
	countKey      = "count"
)

func main() {
	cmd := &cli.Command{
		Name:  "rexdemo",
		Usage: "Drive a store with effects and see what gets cancelled",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugKey,
				Usage: "Log effect lifecycle to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search as you type, replacing the in-flight search on every keystroke",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  keystrokesKey,
						Usage: "Number of keystrokes to simulate",
						Value: 40,
					},
					&cli.DurationFlag{
						Name:  typingKey,
						Usage: "Delay between keystrokes",
						Value: 5 * time.Millisecond,
					},
					&cli.DurationFlag{
						Name:  latencyKey,
						Usage: "How long a search takes to answer",
						Value: 20 * time.Millisecond,
					},
				},
				Action: runSearch,
			},
			{
				Name:  "fib",
				Usage: "Reduce a synchronous sequence of Fibonacci numbers",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  countKey,
						Usage: "How many numbers to emit",
						Value: 10,
					},
				},
				Action: runFib,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(cmd *cli.Command) *zap.Logger {
	if !cmd.Bool(debugKey) {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Printf("falling back to no logging: %v", err)
		return zap.NewNop()
	}
	return logger
}
