// Command convflow runs an interactive console session against one
// domain/flow configuration: read a line, classify it, drive the
// reducer loop, print whatever text or button choices came out, and
// persist the turn.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"convflow/internal/actions"
	"convflow/internal/cache"
	"convflow/internal/config"
	"convflow/internal/controller"
	"convflow/internal/conversation"
	"convflow/internal/logging"
	"convflow/internal/nluoracle"
	"convflow/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, continuing with process environment")
	}

	cfg, err := config.LoadAppConfig("convflow.yaml")
	if err != nil {
		log.Fatalf("loading app config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}

	d, err := config.LoadDomain(cfg.Domain)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading domain file")
	}
	fm, err := config.LoadFlowMap(cfg.Flow, d)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading flow file")
	}

	ctx := context.Background()
	oracle, err := nluoracle.NewEinoOracle(ctx, cfg.NLU, d)
	if err != nil {
		logger.Fatal().Err(err).Msg("building nlu oracle")
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening durable store")
	}
	defer db.Close()

	users := cache.New(db, cfg.CacheLimit)
	if cfg.RedisURL != "" {
		front, err := cache.NewRedisFront(ctx, 0)
		if err != nil {
			logger.Warn().Err(err).Msg("redis accelerator unavailable, falling back to the durable store alone")
		} else {
			defer front.Close()
			users.UseRedisFront(front)
		}
	}
	ctrl := controller.New(fm, actions.NewDefaultRegistry(), oracle, logger)

	const userID = "console"
	state, err := users.Get(ctx, userID, "console user")
	if err != nil {
		logger.Fatal().Err(err).Msg("loading conversation state")
	}

	fmt.Println("Enter something plz")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("- ")
			continue
		}

		msg, err := ctrl.Turn(ctx, state, line)
		if err != nil {
			logger.Error().Err(err).Msg("turn failed")
			continue
		}

		if err := users.Flush(ctx, userID, msg.Text, msg.Button); err != nil {
			logger.Warn().Err(err).Msg("failed to persist turn")
		}

		printResponse(msg)
	}
}

func printResponse(msg *conversation.MessageOutput) {
	if len(msg.Button) > 0 {
		fmt.Println(msg.Text)
		for i, title := range msg.Button {
			fmt.Printf("  %d) %s\n", i+1, title)
		}
		fmt.Print("> ")
		return
	}
	fmt.Printf("%s - ", msg.Text)
}
