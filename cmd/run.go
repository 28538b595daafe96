package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"ola/config"
	"ola/llm"
	"ola/prompt"
	"ola/settings"
	"ola/store"
	"ola/streamers"
	"ola/streamers/cli"
	"ola/wave"
)

// promptOptions are the flags shared by the root and prompt commands.
type promptOptions struct {
	goals      string
	format     string
	warnings   string
	clipboard  bool
	quiet      bool
	pipe       bool
	noThinking bool
	recursion  int
	iterations int
	model      string
}

func addPromptFlags(cmd *cobra.Command, o *promptOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.goals, "goals", "g", "", "Goals for the prompt")
	f.StringVarP(&o.format, "format", "f", "", "Return format (default from settings)")
	f.StringVarP(&o.warnings, "warnings", "w", "", "Warnings for the prompt")
	f.BoolVarP(&o.clipboard, "clipboard", "c", false, "Copy the answer to the clipboard")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "Only print the answer")
	f.BoolVarP(&o.pipe, "pipe", "p", false, "Read context from stdin")
	f.BoolVarP(&o.noThinking, "no-thinking", "t", false, "Hide <think> blocks from the answer")
	f.IntVarP(&o.recursion, "recursion", "r", 1, fmt.Sprintf("Run the prompt N times in sequence (%d-%d)", wave.MinWaves, wave.MaxWaves))
	f.IntVarP(&o.iterations, "iterations", "i", 1, "Refine the answer with feedback up to N times (1-10)")
	f.StringVarP(&o.model, "model", "m", "", "Model to use for this run")
}

// signalContext cancels on interrupt so a running child or stream is stopped.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runPrompt(cmd *cobra.Command, o *promptOptions) error {
	if cmd.Flags().Changed("recursion") {
		if err := wave.ValidateCount(o.recursion); err != nil {
			return err
		}
	}
	if o.iterations < 1 || o.iterations > 10 {
		return fmt.Errorf("iterations must be between 1 and 10, got %d", o.iterations)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	// A wave child carries the same -r flag and must run the prompt itself.
	current := wave.FromEnv(os.LookupEnv)
	if o.recursion > 1 && current == 0 {
		return runWaves(ctx, cmd, waveSpawner(), waveArgs(), o.recursion)
	}
	return runOnce(ctx, cmd, o, current)
}

// Recursion sessions re-execute the current command line.
var (
	waveArgs    = func() []string { return os.Args[1:] }
	waveSpawner = func() wave.Spawner { return wave.NewExecSpawner() }
)

// runWaves re-executes args once per wave. Piped stdin is read once and
// replayed to every child.
func runWaves(ctx context.Context, cmd *cobra.Command, spawner wave.Spawner, args []string, n int) error {
	inv := wave.Invocation{Args: args}
	if in := cmd.InOrStdin(); !cli.IsTerminal(in) {
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		inv.Stdin = data
	}

	controller := wave.NewController(spawner, logger.Named("wave"))
	controller.Status = cmd.ErrOrStderr()
	session, err := controller.Run(ctx, inv, n)
	if session != nil {
		logger.Debug("recursion session finished", "completed", len(session.Waves), "total", session.Total)
	}
	return err
}

// environment is what every prompt-running command needs before it sends.
type environment struct {
	settings *settings.Settings
	provider config.ProviderConfig
	model    string
}

func loadEnvironment(modelFlag string) (*environment, error) {
	s, err := settings.Load()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	pc, err := cfg.Active()
	if err != nil {
		return nil, err
	}

	model := modelFlag
	if model == "" {
		model = pc.Model
	}
	if model == "" {
		model = s.DefaultModel
	}
	pc.Model = model
	return &environment{settings: s, provider: pc, model: model}, nil
}

func (e *environment) newProvider(ctx context.Context) (llm.Provider, error) {
	p, err := llm.NewProvider(ctx, e.provider)
	if err != nil {
		return nil, err
	}
	logger.Debug("provider ready", "provider", e.provider.Provider, "model", e.model)
	return p, nil
}

// newHandler builds the terminal handler, wrapped with the session log when
// logging is enabled. The returned close func releases the log.
func (e *environment) newHandler(cmd *cobra.Command, quiet, markdown bool, base store.Entry) (streamers.ChatHandler, func(), error) {
	var handler streamers.ChatHandler = cli.NewChatHandler(cli.Options{
		Out:           cmd.OutOrStdout(),
		Status:        cmd.ErrOrStderr(),
		In:            cmd.InOrStdin(),
		Quiet:         quiet,
		Markdown:      markdown,
		SpinnerFrames: e.settings.Behavior.ThinkingAnimation.Emojis,
		SpinnerText:   e.settings.Behavior.ThinkingAnimation.Text,
	})
	if !e.settings.Behavior.EnableLogging {
		return handler, func() {}, nil
	}

	backend, target, err := e.settings.LogTarget()
	if err != nil {
		return nil, nil, err
	}
	log, err := store.Open(backend, target)
	if err != nil {
		return nil, nil, err
	}
	base.Provider = e.provider.Provider
	if i := wave.FromEnv(os.LookupEnv); i > 0 {
		base.RecursionWave = &i
	}
	closeLog := func() {
		if err := log.Close(); err != nil {
			logger.Warn("failed to close session log", "error", err)
		}
	}
	return streamers.NewStoringChatHandler(handler, log, base, logger.Named("session-log")), closeLog, nil
}

// logDescription names the session log without exposing a DSN.
func (e *environment) logDescription() string {
	backend, target, err := e.settings.LogTarget()
	if err != nil || backend == settings.BackendPostgres {
		return backend + " session log"
	}
	return target
}

func hints() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	home, _ := os.UserHomeDir()
	h, err := prompt.LoadHints(cwd, home)
	if err != nil {
		logger.Warn("failed to read hints", "error", err)
		return ""
	}
	return h
}

func copyToClipboard(enabled bool) func(string) error {
	if !enabled {
		return nil
	}
	return clipboard.WriteAll
}

func runOnce(ctx context.Context, cmd *cobra.Command, o *promptOptions, current int) error {
	status := cmd.ErrOrStderr()
	if !o.quiet {
		if current > 0 {
			cli.WaveBanner(status, current)
		} else {
			cli.RainbowTo(status, "🌊 Welcome to the Ola CLI Prompt! 🌊")
		}
	}

	env, err := loadEnvironment(o.model)
	if err != nil {
		return err
	}

	piped := ""
	if o.pipe || (!cmd.Flags().Changed("goals") && cli.StdinPiped()) {
		piped, err = cli.ReadPiped(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	in := prompt.ResolveInput(o.goals, cmd.Flags().Changed("goals"), piped)
	req := prompt.Request{
		Goals:        in.Goals,
		ReturnFormat: env.settings.ReturnFormat(o.format),
		Warnings:     o.warnings,
		Context:      in.Context,
		NoThinking:   o.noThinking || env.settings.Defaults.NoThinking,
	}
	if in.Interactive {
		if err := askRequest(cmd, &req, o.format); err != nil {
			return err
		}
	}

	provider, err := env.newProvider(ctx)
	if err != nil {
		return err
	}
	defer llm.Close(provider)

	quiet := o.quiet || env.settings.Defaults.Quiet
	handler, closeLog, err := env.newHandler(cmd, quiet, req.NoThinking && cli.IsTerminal(cmd.OutOrStdout()), store.Entry{Command: cmd.Name()})
	if err != nil {
		return err
	}
	defer closeLog()

	runner := &prompt.Runner{
		Provider:  provider,
		Model:     env.model,
		Template:  env.settings.PromptTemplate,
		Hints:     hints(),
		Handler:   handler,
		Clipboard: copyToClipboard(o.clipboard || env.settings.Defaults.Clipboard),
		Status:    status,
		Logger:    logger.Named("prompt"),
	}

	if o.iterations > 1 {
		_, err = runner.Iterate(ctx, req, o.iterations)
	} else {
		_, err = runner.Structured(ctx, req)
	}
	if err != nil {
		return err
	}

	if !quiet {
		if req.Context != "" {
			fmt.Fprintf(status, "Context from stdin: %d characters\n", len(req.Context))
		}
		cli.Success(status, "Prompt executed successfully")
	}
	return nil
}

// askRequest fills goals, format and warnings from the terminal.
func askRequest(cmd *cobra.Command, req *prompt.Request, formatFlag string) error {
	p := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

	goals, err := p.Ask("Goals", "Anonymous")
	if err != nil {
		return err
	}
	req.Goals = goals

	if formatFlag == "" {
		format, err := p.Ask("Return format", req.ReturnFormat)
		if err != nil {
			return err
		}
		req.ReturnFormat = format
	}

	if req.Warnings == "" {
		warnings, err := p.Ask("Warnings", "")
		if err != nil {
			return err
		}
		req.Warnings = strings.TrimSpace(warnings)
	}
	return nil
}
