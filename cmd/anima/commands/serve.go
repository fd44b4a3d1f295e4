package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/animahq/anima/pkg/chat"
	"github.com/animahq/anima/pkg/configdoc"
	"github.com/animahq/anima/pkg/gateway"
	"github.com/animahq/anima/pkg/kv"
	"github.com/animahq/anima/pkg/session"
	"github.com/animahq/anima/pkg/social"
	"github.com/animahq/anima/pkg/speech"
	"github.com/animahq/anima/pkg/storage"
	"github.com/animahq/anima/pkg/subconscious"
	"github.com/animahq/anima/pkg/vision"
)

var (
	flagServeConfig string
	flagServeAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the companion gateway server",
	Long: `Starts the HTTP gateway: the dispatch endpoint, the SSE and WebSocket
event streams, and the config/subconscious data endpoint.

Collaborator backends are registered from the environment: OpenAI chat and
Whisper when OPENAI_API_KEY is set, Gemini chat and vision when
GEMINI_API_KEY is set, Twitter posting when TWITTER_BEARER_TOKEN is set.

The whole API is gated by ANIMA_API_ENABLED.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&flagServeConfig, "config", "f", "", "YAML server config file")
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// serveConfig is the YAML server configuration.
type serveConfig struct {
	Addr          string `yaml:"addr"`
	SystemPrompt  string `yaml:"system_prompt"`
	ChatBackend   string `yaml:"chat_backend"`
	ChatModel     string `yaml:"chat_model"`
	SpeechBackend string `yaml:"speech_backend"`
	KVURL         string `yaml:"kv_url"`
	MediaURL      string `yaml:"media_url"`
	ConfigPath    string `yaml:"config_path"`
}

func loadServeConfig(path string) (serveConfig, error) {
	cfg := serveConfig{
		Addr:          ":3000",
		SystemPrompt:  "You are a friendly AI companion. Keep replies short and warm.",
		ChatBackend:   "openai",
		SpeechBackend: "openai",
		KVURL:         "memory://",
		ConfigPath:    "anima-config.json",
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// apiEnabled reads the ANIMA_API_ENABLED feature gate.
func apiEnabled() bool {
	switch strings.ToLower(os.Getenv("ANIMA_API_ENABLED")) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func runServe(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if IsVerbose() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	logger := slog.Default()

	cfg, err := loadServeConfig(flagServeConfig)
	if err != nil {
		return err
	}
	if flagServeAddr != "" {
		cfg.Addr = flagServeAddr
	}

	enabled := apiEnabled()
	if !enabled {
		logger.Warn("ANIMA_API_ENABLED is not set, every request will get 503")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chatMux := chat.NewMux()
	speechMux := speech.NewMux()
	var describer vision.Describer
	var poster social.Poster

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		p, err := chat.NewOpenAI(chat.OpenAIConfig{APIKey: key, Model: cfg.ChatModel})
		if err != nil {
			return err
		}
		chatMux.Handle("openai", p)
		t, err := speech.NewOpenAI(speech.OpenAIConfig{APIKey: key})
		if err != nil {
			return err
		}
		speechMux.Handle("openai", t)
		logger.Info("openai backends registered")
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		p, err := chat.NewGemini(ctx, chat.GeminiConfig{APIKey: key, Model: cfg.ChatModel})
		if err != nil {
			return err
		}
		chatMux.Handle("gemini", p)
		d, err := vision.NewGemini(ctx, vision.GeminiConfig{APIKey: key})
		if err != nil {
			return err
		}
		describer = d
		logger.Info("gemini backends registered")
	}
	if token := os.Getenv("TWITTER_BEARER_TOKEN"); token != "" {
		tw, err := social.NewTwitter(social.TwitterConfig{BearerToken: token})
		if err != nil {
			return err
		}
		poster = tw
		logger.Info("twitter poster registered")
	}

	kvStore, err := kv.Open(cfg.KVURL)
	if err != nil {
		return fmt.Errorf("open kv store: %w", err)
	}
	defer kvStore.Close()

	memory := subconscious.New(kvStore)
	// Each run starts with an empty subconscious.
	if err := memory.Clear(ctx); err != nil {
		return fmt.Errorf("clear subconscious: %w", err)
	}

	var archive storage.FileStore
	if cfg.MediaURL != "" {
		archive, err = storage.Open(cfg.MediaURL, newS3Client())
		if err != nil {
			return fmt.Errorf("open media archive: %w", err)
		}
		logger.Info("media archive enabled", "url", cfg.MediaURL)
	}

	configStore, err := configdoc.Create(cfg.ConfigPath, defaultConfigDoc(cfg))
	if err != nil {
		return fmt.Errorf("open config document: %w", err)
	}

	gw := gateway.New(gateway.Options{
		Config: gateway.Config{
			Enabled:       enabled,
			SystemPrompt:  cfg.SystemPrompt,
			ChatBackend:   cfg.ChatBackend,
			SpeechBackend: cfg.SpeechBackend,
		},
		Chat:    chatMux,
		Speech:  speechMux,
		Vision:  describer,
		Memory:  memory,
		Poster:  poster,
		Log:     session.NewLog(),
		Archive: archive,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: gateway.NewServer(gw, configStore).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", cfg.Addr, "enabled", enabled)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// defaultConfigDoc seeds the companion config document on first run.
func defaultConfigDoc(cfg serveConfig) map[string]any {
	return map[string]any{
		"name":          "anima",
		"system_prompt": cfg.SystemPrompt,
		"language":      "en",
	}
}

// newS3Client builds an S3 client from AWS_* environment variables, or nil
// when no credentials are configured. A custom endpoint (MinIO, R2) is
// honored via AWS_ENDPOINT_URL.
func newS3Client() *s3.Client {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	if accessKey == "" {
		return nil
	}
	creds := aws.Credentials{
		AccessKeyID:     accessKey,
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region: region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		}),
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}
