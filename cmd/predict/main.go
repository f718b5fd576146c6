package main

// Submit one prediction through the web form from a terminal:
//   go run ./cmd/predict -url http://localhost:8080 -demo
//   go run ./cmd/predict -set glucose=148 -set bmi=33.6 -set age=50

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"diabetes-backend/internal/predictform"
)

type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ",") }

func (s *setFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	*s = append(*s, v)
	return nil
}

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8080", "site root")
		demo    = flag.Bool("demo", false, "fill the sample patient (localhost only)")
		timeout = flag.Duration("timeout", 30*time.Second, "request timeout")
		sets    setFlags
	)
	flag.Var(&sets, "set", "field value as name=value; repeatable")
	flag.Parse()

	if err := run(*baseURL, *demo, sets, *timeout, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(baseURL string, demo bool, sets []string, timeout time.Duration, out io.Writer) error {
	out = &syncWriter{w: out}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := predictform.NewHTTPClient(baseURL, &http.Client{Jar: jar, Timeout: timeout})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	form, err := client.LoadForm(ctx, "/predict/", "predictionForm")
	if err != nil {
		return err
	}

	view := newTermView(out)
	scheduler := predictform.NewTickerScheduler(predictform.DefaultFrameInterval)
	defer scheduler.Stop()

	ctrl, err := predictform.New(predictform.Options{
		Form:      form,
		View:      view,
		Predictor: client,
		Notifier:  predictform.NewAlertNotifier(out),
		Scheduler: scheduler,
		Host:      u.Host,
	})
	if err != nil {
		return err
	}

	if demo {
		if err := ctrl.FillDemoData(); err != nil {
			return err
		}
	}
	for _, kv := range sets {
		name, value, _ := strings.Cut(kv, "=")
		if err := ctrl.Input(name, value); err != nil {
			return err
		}
	}

	if err := ctrl.Submit(ctx); err != nil {
		var verr *predictform.ValidationError
		if errors.As(err, &verr) {
			return errors.New("invalid input")
		}
		return err
	}

	select {
	case <-view.settled:
	case <-ctx.Done():
	}
	view.printRecommendations()
	return nil
}
