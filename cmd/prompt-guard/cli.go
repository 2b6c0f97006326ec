package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/ressKim-io/prompt-guard/internal/adapter/client"
	"github.com/ressKim-io/prompt-guard/internal/infrastructure/config"
)

const cliTimeout = 5 * time.Second

// localBaseURL returns the URL a process on the same host uses to reach the
// server. Wildcard binds are dialed on loopback.
func localBaseURL(server config.ServerConfig) string {
	host := server.Host
	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::", "[::]":
		host = "::1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(server.Port))
}

func newLocalClient(timeout time.Duration) (*client.GuardClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return client.NewGuardClient(localBaseURL(cfg.Server), timeout), nil
}

// healthcheck checks the local server for container health checks.
// "healthcheck" fails once the model load has failed; "healthcheck ready"
// also fails while the model is still loading.
func healthcheck(args []string) error {
	check := checkHealth
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "ready":
		check = checkReady
	default:
		return errors.New("usage: prompt-guard healthcheck [ready]")
	}

	guard, err := newLocalClient(cliTimeout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	return check(ctx, guard, os.Stdout)
}

func checkHealth(ctx context.Context, guard *client.GuardClient, w io.Writer) error {
	health, err := guard.Health(ctx)
	if err != nil {
		return err
	}
	if !health.OK {
		reason := "unknown error"
		if health.Error != nil {
			reason = *health.Error
		}
		return fmt.Errorf("model %s failed to load: %s", health.Model, reason)
	}

	_, err = fmt.Fprintf(w, "ok model=%s ready=%t\n", health.Model, health.Ready)
	return err
}

func checkReady(ctx context.Context, guard *client.GuardClient, w io.Writer) error {
	if err := guard.Ready(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "ready")
	return err
}

// classify sends texts to the local server and prints the results as JSON.
// One text uses POST /classify, several use POST /classify/batch.
func classify(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: prompt-guard classify TEXT [TEXT...]")
	}

	guard, err := newLocalClient(time.Minute)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	return classifyTexts(ctx, guard, args, os.Stdout)
}

func classifyTexts(ctx context.Context, guard *client.GuardClient, texts []string, w io.Writer) error {
	var out interface{}
	if len(texts) == 1 {
		result, err := guard.Classify(ctx, texts[0])
		if err != nil {
			return err
		}
		out = result
	} else {
		results, err := guard.ClassifyBatch(ctx, texts)
		if err != nil {
			return err
		}
		out = results
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
