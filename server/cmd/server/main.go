package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obsidianstack/alertbridge/pkg/types"
	"github.com/obsidianstack/alertbridge/server/internal/api"
	"github.com/obsidianstack/alertbridge/server/internal/config"
	"github.com/obsidianstack/alertbridge/server/internal/cooldown"
	"github.com/obsidianstack/alertbridge/server/internal/metrics"
	"github.com/obsidianstack/alertbridge/server/internal/notify"
	"github.com/obsidianstack/alertbridge/server/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded into the environment if present")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(*envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no env file, using process environment", "path", *envFile)
		} else {
			slog.Warn("could not load env file, continuing with process environment", "err", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	chat, caller, err := dispatchers(cfg)
	if err != nil {
		slog.Error("failed to build dispatchers", "err", err)
		os.Exit(1)
	}

	if args := flag.Args(); len(args) > 0 && args[0] == "test-notification" {
		target := ""
		if len(args) > 1 {
			target = args[1]
		}
		if err := testNotification(context.Background(), chat, caller, target); err != nil {
			slog.Error("test notification failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(cfg, *configPath, chat, caller); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func dispatchers(cfg *config.Config) (*notify.Slack, *notify.CallMeBot, error) {
	chat, err := notify.NewSlack(cfg.Chat.WebhookURL(), cfg.Chat.Timeout)
	if err != nil {
		return nil, nil, err
	}
	caller, err := notify.NewCallMeBot(notify.CallMeBotConfig{
		APIURL:  cfg.Call.APIURL,
		Phone:   cfg.Call.Phone(),
		APIKey:  cfg.Call.APIKey(),
		Lang:    cfg.Call.Lang,
		Timeout: cfg.Call.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return chat, caller, nil
}

func serve(cfg *config.Config, configPath string, chat notify.Chat, caller notify.Caller) error {
	slog.Info("alertbridge starting",
		"http_port", cfg.Server.HTTPPort,
		"cooldown_window", cfg.Cooldown.Window,
		"state_backend", cfg.State.Backend,
		"state_path", cfg.State.Path,
	)

	st, err := store.Open(cfg.State.Backend, cfg.State.Path)
	if err != nil {
		return err
	}
	if c, ok := st.(io.Closer); ok {
		defer c.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gate := cooldown.New(st, cfg.Cooldown.Window)

	// Only the cooldown window is hot-reloadable; everything else needs a
	// restart.
	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(updated *config.Config) {
				if w := updated.Cooldown.Window; w != gate.Window() {
					gate.SetWindow(w)
					slog.Info("cooldown window updated", "window", gate.Window())
				}
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           api.New(chat, caller, gate, metrics.New()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("alertbridge shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 20*time.Second)
	defer stop()
	return httpSrv.Shutdown(shutdownCtx)
}

// testNotification sends a synthetic critical alert straight to the
// dispatchers, bypassing classification and the cooldown. target is "chat",
// "call" or empty for both.
func testNotification(ctx context.Context, chat notify.Chat, caller notify.Caller, target string) error {
	a := types.Alert{
		Source:   types.SourceAzureMonitor,
		Severity: types.SevCritical,
		Text: "[AZURE MONITOR] Fired — alertbridge test notification\n" +
			"Severity: Sev0 | Signal: Test\n" +
			"Resource: alertbridge\n",
	}

	sendChat := target == "" || target == "chat"
	sendCall := target == "" || target == "call"
	if !sendChat && !sendCall {
		return fmt.Errorf("unknown target %q: want chat|call", target)
	}

	var errs []error
	if sendChat {
		if err := chat.Send(ctx, a.Text); err != nil {
			errs = append(errs, err)
		} else {
			slog.Info("test notification delivered", "target", "chat")
		}
	}
	if sendCall {
		if err := caller.Call(ctx, notify.ShortText(a.Text)); err != nil {
			errs = append(errs, err)
		} else {
			slog.Info("test notification delivered", "target", "call")
		}
	}
	return errors.Join(errs...)
}
