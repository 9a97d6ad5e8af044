package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/commerce-chat/internal/app/bootstrap"
	appconfig "github.com/wolfman30/commerce-chat/internal/config"
	"github.com/wolfman30/commerce-chat/internal/conversation"
	"github.com/wolfman30/commerce-chat/internal/persona"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	question := flag.String("q", "Hola, ¿hacen playeras personalizadas con mi logo?", "question to send")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ChatTimeout+5*time.Second)
	defer cancel()

	p, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		log.Fatalf("load persona: %v", err)
	}
	llm, err := bootstrap.BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("build llm client: %v", err)
	}

	orch := bootstrap.BuildOrchestrator(cfg, p, llm, bootstrap.BuildOrderStatusLookup(nil, cfg, logger), nil, logger)

	fmt.Printf("provider=%s persona=%s\n", cfg.LLMProvider, p.Name())
	start := time.Now()
	resp, err := orch.Handle(ctx, conversation.ChatRequest{Question: question})
	if err != nil {
		log.Fatalf("chat failed: %v", err)
	}

	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))
	fmt.Printf("elapsed=%v degraded=%t reason=%s\n", time.Since(start).Round(time.Millisecond), resp.Degraded, resp.Reason)
	if resp.Degraded {
		os.Exit(1)
	}
}
