package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vtcode/vtcode/pkg/bus"
	"github.com/vtcode/vtcode/pkg/config"
	"github.com/vtcode/vtcode/pkg/contextgather"
	"github.com/vtcode/vtcode/pkg/controller"
	"github.com/vtcode/vtcode/pkg/modelcache"
	"github.com/vtcode/vtcode/pkg/nullprovider"
	"github.com/vtcode/vtcode/pkg/pattern"
	"github.com/vtcode/vtcode/pkg/providers"
	"github.com/vtcode/vtcode/pkg/runloop"
	"github.com/vtcode/vtcode/pkg/safety"
	"github.com/vtcode/vtcode/pkg/session"
	"github.com/vtcode/vtcode/pkg/tools"
	"github.com/vtcode/vtcode/pkg/vtlog"
)

func runCmd() *cobra.Command {
	var (
		message   string
		workspace string
		trusted   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a vtcode session against the current (or given) workspace",
		Long: `Start an interactive session, or send a single one-shot message with -m.

Examples:
  vtcode run                         # interactive REPL
  vtcode run -m "list the files"     # one-shot
  vtcode run --workspace ./myproj --trusted`,
		Run: func(cmd *cobra.Command, args []string) {
			runSession(message, workspace, trusted)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "one-shot message (omit for interactive mode)")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", ".", "workspace root the agent may read/write within")
	cmd.Flags().BoolVar(&trusted, "trusted", false, "mark the workspace as fully trusted (skips destructive-call approval)")

	return cmd
}

func runSession(message, workspace string, trusted bool) {
	log := vtlog.For("cmd")

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	paths, err := config.ResolveRuntimePaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error resolving runtime paths: %v\n", err)
		os.Exit(1)
	}

	absWorkspace, err := absPath(workspace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error resolving workspace: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Info().Msg("interrupted, shutting down")
		cancel()
	}()

	eventBus := bus.New()
	events := eventBus.Subscribe()
	go printEvents(events)

	if cfg.WebUI.ListenAddr != "" {
		go serveWebUI(ctx, eventBus, cfg.WebUI.ListenAddr)
	}

	registry := tools.NewRegistry()
	registry.Register(&tools.ShellTool{DefaultTimeout: cfg.Process.DefaultTimeout})
	registry.Register(&tools.ReadFileTool{})
	registry.Register(&tools.WriteFileTool{})
	registry.Register(&tools.SearchContextTool{Options: contextgather.Options{
		MaxContextFiles:    cfg.ContextGather.MaxContextFiles,
		MaxSnippetsPerFile: cfg.ContextGather.MaxSnippetsPerFile,
		MaxContextTokens:   cfg.ContextGather.MaxContextTokens,
		SnippetPadLines:    cfg.ContextGather.SnippetPadLines,
	}})

	if len(cfg.MCP.Servers) > 0 {
		mcpTools, err := tools.LoadMCPTools(context.Background(), mcpServerConfigs(cfg.MCP.Servers))
		if err != nil {
			log.Warn().Err(err).Msg("failed to load MCP tools, continuing without them")
		}
		for _, t := range mcpTools {
			registry.Register(t)
		}
	}

	patternEngine := pattern.New()

	resultCache := modelcache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL, paths.ModelCacheSnapshotPath())
	executor := tools.NewExecutor(registry, pattern.ExecutorRecorder{Engine: patternEngine}, modelcache.ResultCacheAdapter{Cache: resultCache})

	gateway := safety.New(safety.Config{
		MaxPerTurn:            cfg.Gateway.MaxPerTurn,
		MaxPerSession:         cfg.Gateway.MaxPerSession,
		RateLimitPerSecond:    cfg.Gateway.RateLimitPerSecond,
		RateLimitPerMinute:    cfg.Gateway.RateLimitPerMinute,
		EnforceRateLimit:      cfg.Gateway.EnforceRateLimit,
		ApprovalRiskThreshold: parseRiskLevel(cfg.Gateway.ApprovalRiskThreshold),
		ApprovalBypassed:      cfg.Gateway.ApprovalBypassed,
		WorkspaceTrust:        workspaceTrust(trusted || cfg.Gateway.WorkspaceTrusted),
		DestructiveToolNames: map[string]struct{}{
			"write_file": {},
			"shell":      {},
		},
	})

	provider := nullprovider.New("")

	scheduler := &runloop.Scheduler{
		Config: runloop.Config{
			MaxTurns:            cfg.Runloop.MaxTurns,
			MaxToolLoops:        cfg.Runloop.MaxToolLoops,
			ContextBudgetTokens: cfg.Runloop.ContextBudgetTokens,
			TrimThreshold:       cfg.Runloop.TrimThreshold,
			RetentionPercent:    cfg.Runloop.RetentionPercent,
			TurnDeadline:        cfg.Process.DefaultTimeout,
		},
		Provider:         provider,
		Registry:         registry,
		Executor:         executor,
		Gateway:          gateway,
		Pattern:          patternEngine,
		Bus:              eventBus,
		Approval:         cliApproval{},
		Summary:          staticSummarizer{model: provider.DefaultModel(), workspace: absWorkspace},
		Model:            provider.DefaultModel(),
		WorkingDirectory: absWorkspace,
		WorkspaceRoot:    absWorkspace,
		Shell:            defaultShell(),
	}

	state := session.New(sessionID(), session.Constraints{
		MaxTurns:                cfg.Runloop.MaxTurns,
		MaxConsecutiveToolLoops: cfg.Runloop.MaxToolLoops,
		MaxContextTokens:        cfg.Runloop.ContextBudgetTokens,
	})

	steering := make(chan controller.SteerMessage)

	if message != "" {
		runOneShot(ctx, scheduler, state, steering, message)
		flushCache(resultCache)
		return
	}

	runInteractive(ctx, scheduler, state, steering)
	flushCache(resultCache)
}

func runOneShot(ctx context.Context, s *runloop.Scheduler, state *session.State, steering chan controller.SteerMessage, message string) {
	state.AddUserMessage(message)
	if err := s.Run(ctx, state, steering); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	printLastAssistant(state)
}

func runInteractive(ctx context.Context, s *runloop.Scheduler, state *session.State, steering chan controller.SteerMessage) {
	fmt.Println("vtcode interactive session. Type /quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return
		}

		state.AddUserMessage(line)
		if err := s.Run(ctx, state, steering); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printLastAssistant(state)

		if ctx.Err() != nil {
			return
		}
	}
}

func printLastAssistant(state *session.State) {
	msgs := state.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == providers.RoleAssistant {
			fmt.Printf("\n%s\n\n", msgs[i].Text)
			return
		}
	}
}

func printEvents(events <-chan bus.Event) {
	for range events {
		// The CLI renders only the final assistant text today; streaming
		// deltas and tool-call events are available here for a future
		// richer front end to subscribe to.
	}
}

func flushCache(c *modelcache.Cache) {
	if err := c.Flush(); err != nil {
		vtlog.For("cmd").Warn().Err(err).Msg("cache flush failed")
	}
}

func parseRiskLevel(s string) safety.RiskLevel {
	switch strings.ToLower(s) {
	case "low":
		return safety.RiskLow
	case "high":
		return safety.RiskHigh
	default:
		return safety.RiskMedium
	}
}

func workspaceTrust(trusted bool) safety.WorkspaceTrust {
	if trusted {
		return safety.TrustTrusted
	}
	return safety.TrustUntrusted
}

func mcpServerConfigs(specs []config.MCPServerSpec) []tools.MCPServerConfig {
	out := make([]tools.MCPServerConfig, 0, len(specs))
	for _, s := range specs {
		out = append(out, tools.MCPServerConfig{
			Name:    s.Name,
			Command: s.Command,
			Args:    s.Args,
			Env:     s.Env,
		})
	}
	return out
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}
