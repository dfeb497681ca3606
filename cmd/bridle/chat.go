package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/i2y/bridle/internal/slogx"
	"github.com/i2y/bridle/llm"
	"github.com/i2y/bridle/mcp"
	"github.com/i2y/bridle/provider"
	"github.com/i2y/bridle/tools"
)

const maxToolRounds = 8

type chatFlags struct {
	family      string
	model       string
	system      string
	baseURL     string
	maxTokens   int
	temperature float64
	thinking    int
	attach      []string
	jsonOutput  bool
	mcpCommand  string
	workspace   string
}

func newChatCmd(a *app) *cobra.Command {
	f := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Stream a completion for a prompt",
		Long: `Stream a completion for a prompt.

The prompt is taken from the arguments, or from standard input when no
arguments are given or the only argument is "-".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, a, f, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.family, "family", "f", "", "backend family (anthropic, vertex, gemini, openai)")
	flags.StringVarP(&f.model, "model", "m", "", "model identifier; unknown ids use the family default")
	flags.StringVarP(&f.system, "system", "s", "", "system prompt")
	flags.StringVar(&f.baseURL, "base-url", "", "override the backend endpoint")
	flags.IntVar(&f.maxTokens, "max-tokens", 0, "output token cap (default: the model maximum)")
	flags.Float64Var(&f.temperature, "temperature", 0, "sampling temperature")
	flags.IntVar(&f.thinking, "thinking", 0, "extended thinking budget in tokens")
	flags.StringArrayVarP(&f.attach, "attach", "a", nil, "attach files matching a glob (repeatable, ** supported)")
	flags.BoolVar(&f.jsonOutput, "json", false, "write chunks as newline-delimited JSON")
	flags.StringVar(&f.mcpCommand, "mcp", "", "command line of an MCP server whose tools the model may call")
	flags.StringVar(&f.workspace, "workspace", "", "let the model read, find and search files under this directory")
	return cmd
}

// settings merges the config file with the flags that were set.
func (f *chatFlags) settings(cmd *cobra.Command, cfg Config) Config {
	changed := cmd.Flags().Changed
	if changed("family") {
		cfg.Family = f.family
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("system") {
		cfg.System = f.system
	}
	if changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if changed("max-tokens") {
		cfg.MaxTokens = f.maxTokens
	}
	if changed("temperature") {
		cfg.Temperature = &f.temperature
	}
	if changed("thinking") {
		cfg.Thinking = f.thinking
	}
	return cfg
}

func runChat(cmd *cobra.Command, a *app, f *chatFlags, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := f.settings(cmd, a.cfg)

	prompt, err := readPrompt(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	att, err := collectAttachments(f.attach)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	log := a.log.With(slog.String("session", sessionID))

	opts := cfg.providerOptions()
	opts.Logger = log
	h, err := provider.New(cfg.Family, opts)
	if err != nil {
		return err
	}
	log.Info("chat started",
		slogx.Provider(h.Name()), slogx.Model(h.Model().ID), slog.Int("attachments", len(att.files)))

	callOpts := []llm.Option{llm.WithHandler(h), llm.WithSystemMessage(cfg.System)}
	if cfg.MaxTokens > 0 {
		callOpts = append(callOpts, llm.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.Temperature != nil {
		callOpts = append(callOpts, llm.WithTemperature(*cfg.Temperature))
	}

	registry := llm.NewToolRegistry()
	if f.workspace != "" {
		ws, err := tools.OpenWorkspace(f.workspace)
		if err != nil {
			return err
		}
		defer func() { _ = ws.Close() }()
		if err := registry.Register(ws.Tools()...); err != nil {
			return err
		}
	}
	if fields := strings.Fields(f.mcpCommand); len(fields) > 0 {
		client, err := mcp.NewStdioClient(ctx, fields[0], fields[1:])
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		mcpTools, err := client.Tools(ctx)
		if err != nil {
			return err
		}
		if err := registry.Register(mcpTools...); err != nil {
			return fmt.Errorf("mcp tools: %w", err)
		}
		log.Debug("mcp tools loaded", slog.Int("count", len(mcpTools)))
	}
	available := registry.All()
	if len(available) > 0 {
		callOpts = append(callOpts, llm.WithTools(available...))
	}

	out := &chunkWriter{out: cmd.OutOrStdout(), diag: cmd.ErrOrStderr(), json: f.jsonOutput}
	messages := []llm.Message{llm.UserMessageWithImages(att.prompt(prompt), att.images...)}

	var total provider.Tally
	for round := 0; ; round++ {
		stream, err := llm.CallMessagesStream(ctx, messages, callOpts...)
		if err != nil {
			return err
		}
		for chunk := range stream.Chunks() {
			if err := out.write(chunk); err != nil {
				_ = stream.Close()
				return err
			}
		}
		resp := stream.Response()
		total.Merge(resp.Usage())
		if err := stream.Err(); err != nil {
			out.summary(h.Model(), total)
			return err
		}

		if !resp.HasToolCalls() || len(available) == 0 {
			break
		}
		if round+1 >= maxToolRounds {
			return errors.New("tool call limit reached")
		}

		outputs, err := llm.ExecuteToolCalls(ctx, resp.ToolCalls(), registry)
		if err != nil {
			return err
		}
		messages = append(resp.Messages(), outputs...)
	}

	out.summary(h.Model(), total)
	return nil
}

// readPrompt joins args, or reads stdin when there are none or args is "-".
func readPrompt(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("empty prompt")
	}
	return prompt, nil
}

// chunkWriter renders chunks as text or NDJSON. Text goes to out; reasoning,
// tool calls and the usage summary go to diag.
type chunkWriter struct {
	out  io.Writer
	diag io.Writer
	json bool
}

func (w *chunkWriter) write(chunk provider.Chunk) error {
	if w.json {
		b, err := provider.MarshalChunk(chunk)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w.out, "%s\n", b)
		return err
	}

	switch c := chunk.(type) {
	case provider.TextChunk:
		_, err := io.WriteString(w.out, c.Text)
		return err
	case provider.ReasoningChunk:
		_, err := color.New(color.Faint).Fprint(w.diag, c.Reasoning)
		return err
	case provider.ToolCallChunk:
		if c.Name != "" {
			_, err := fmt.Fprintf(w.diag, "\n%s ", color.YellowString("→ %s", c.Name))
			return err
		}
		_, err := io.WriteString(w.diag, c.ArgumentsDelta)
		return err
	}
	return nil
}

func (w *chunkWriter) summary(m provider.Model, t provider.Tally) {
	if w.json {
		return
	}
	fmt.Fprintf(w.diag, "\n%s\n", color.CyanString(
		"%s: %d in, %d out, %d cache write, %d cache read, $%.6f",
		m.ID, t.InputTokens, t.OutputTokens, t.CacheWriteTokens, t.CacheReadTokens, t.Cost(m.Info),
	))
}
