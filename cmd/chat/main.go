package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nidhogg/nuka-agent/internal/action"
	"github.com/nidhogg/nuka-agent/internal/agent"
	"github.com/nidhogg/nuka-agent/internal/command"
	"github.com/nidhogg/nuka-agent/internal/config"
)

var (
	configPath    string
	name          string
	personality   string
	contextWindow int
	logLevel      string
	demo          bool
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to a keyword-driven agent with short-term memory",
	Long: `Start an interactive session with a single agent.

Plain input is answered by the agent. Input starting with '/' is a command;
type /help to list them. Type quit, exit or stop to leave.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "Path to a JSON or YAML config file")
	rootCmd.Flags().StringVar(&name, "name", "", "Agent name (overrides config)")
	rootCmd.Flags().StringVar(&personality, "personality", "", "Agent personality (overrides config)")
	rootCmd.Flags().IntVar(&contextWindow, "context-window", 0, "Maximum memories retained (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "Run the demo prompts before the interactive session")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Merge(&config.Config{
		Agent:  config.AgentConfig{Name: name, Personality: personality},
		Memory: config.MemoryConfig{ContextWindow: contextWindow},
		Log:    config.LogConfig{Level: logLevel},
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ag, err := newAgent(cfg, logger)
	if err != nil {
		return err
	}

	cmds := command.NewRegistry()
	command.RegisterBuiltins(cmds, ag)
	command.RegisterMemoryCommands(cmds, ag, cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &session{agent: ag, commands: cmds, out: cmd.OutOrStdout(), logger: logger}
	if demo {
		s.demo(ctx)
	}
	return s.loop(ctx, cmd.InOrStdin())
}

func newAgent(cfg *config.Config, logger *zap.Logger) (*agent.Agent, error) {
	reg := action.NewRegistry()
	if cfg.BuiltinsEnabled() {
		if err := action.RegisterBuiltins(reg, nil); err != nil {
			return nil, err
		}
	}

	ag, err := agent.New(
		agent.Persona{Name: cfg.Agent.Name, Personality: cfg.Agent.Personality},
		agent.WithContextWindow(cfg.Memory.ContextWindow),
		agent.WithRecentCount(cfg.Memory.RecentCount),
		agent.WithRegistry(reg),
		agent.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return ag, nil
}
