package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sapientpants/quorum-sub001/llm"
	"github.com/sapientpants/quorum-sub001/llm/factory"
	"github.com/sapientpants/quorum-sub001/types"
)

// =============================================================================
// 💬 chat 命令
// =============================================================================

func runChat(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	provider := fs.String("provider", "", "Provider id (defaults to llm.default_provider)")
	model := fs.String("model", "", "Model (defaults to the provider default)")
	stream := fs.Bool("stream", false, "Print tokens as they arrive")
	system := fs.String("system", "", "System prompt")
	temperature := fs.Float64("temperature", -1, "Sampling temperature (unset when negative)")
	maxTokens := fs.Int("max-tokens", 0, "Maximum answer tokens (unset when zero)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(stderr, "Error: a prompt is required")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, common, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	defer a.close()

	if *provider == "" {
		*provider = a.cfg.LLM.DefaultProvider
	}
	client, err := a.registry.GetClient(*provider)
	if err != nil {
		reportError(stderr, err)
		return 1
	}
	if *model == "" {
		*model = client.GetDefaultModel()
	}
	key, env := apiKey(*provider)

	var msgs []types.Message
	if *system != "" {
		msgs = append(msgs, types.NewMessage(uuid.NewString(), types.SenderSystem, *system))
	}
	msgs = append(msgs, types.NewMessage(uuid.NewString(), types.SenderUser, prompt))

	settings := &types.LLMSettings{}
	if *temperature >= 0 {
		settings.Temperature = types.Float64(*temperature)
	}
	if *maxTokens > 0 {
		settings.MaxTokens = types.Int(*maxTokens)
	}

	a.logger.Debug("chat",
		zap.String("provider", client.GetProviderName()),
		zap.String("model", *model),
		zap.Bool("stream", *stream),
		zap.String("key_env", env))

	var callbacks *types.StreamingCallbacks
	if *stream {
		callbacks = &types.StreamingCallbacks{
			OnToken: func(token string) { fmt.Fprint(stdout, token) },
		}
	}

	answer, err := client.SendMessage(ctx, msgs, key, *model, settings, callbacks)
	if err != nil {
		if *stream {
			fmt.Fprintln(stdout)
		}
		reportError(stderr, err)
		return 1
	}
	if *stream && client.SupportsStreaming() {
		fmt.Fprintln(stdout)
		return 0
	}
	fmt.Fprintln(stdout, answer)
	return 0
}

// =============================================================================
// 📚 models 命令
// =============================================================================

func runModels(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	provider := fs.String("provider", "", "Only list this provider")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, err := newApp(context.Background(), common, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	defer a.close()

	ids := factory.SupportedProviders()
	if *provider != "" {
		ids = []string{*provider}
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tMODEL\tDEFAULT\tSTREAMING\tCONTEXT")
	for _, id := range ids {
		client, err := a.registry.GetClient(id)
		if err != nil {
			tw.Flush()
			reportError(stderr, err)
			return 1
		}
		caps := client.GetCapabilities()
		for _, m := range client.GetAvailableModels() {
			def := ""
			if m == client.GetDefaultModel() {
				def = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\n",
				client.GetProviderName(), m, def, caps.SupportsStreaming, caps.MaxContextLength)
		}
	}
	tw.Flush()
	return 0
}

// validateKeys checks every key concurrently. It fails only when ctx ends
// before all checks finish; an invalid key is a false result, not an error.
func validateKeys(ctx context.Context, registry *llm.ClientRegistry, keys map[string]string) (map[string]bool, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]bool, len(keys))
	)
	g, gctx := errgroup.WithContext(ctx)
	for id, key := range keys {
		client, err := registry.GetClient(id)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			ok := client.ValidateAPIKey(gctx, key)
			if err := gctx.Err(); err != nil {
				return err
			}
			mu.Lock()
			results[id] = ok
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// =============================================================================
// 🔑 validate 命令
// =============================================================================

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, common, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	defer a.close()

	keys := make(map[string]string)
	for _, id := range factory.SupportedProviders() {
		if key, _ := apiKey(id); key != "" {
			keys[id] = key
		}
	}
	results, err := validateKeys(ctx, a.registry, keys)
	if err != nil {
		fmt.Fprintf(stderr, "Validation failed: %v\n", err)
		return 1
	}

	if len(results) == 0 {
		fmt.Fprintln(stderr, "No API keys found; set OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY or XAI_API_KEY")
		return 1
	}

	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	code := 0
	for _, id := range ids {
		status := "valid"
		if !results[id] {
			status = "invalid"
			code = 1
		}
		fmt.Fprintf(stdout, "%-10s %s\n", id, status)
	}
	return code
}
