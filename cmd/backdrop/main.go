package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/guidoenr/backdrop/internal/app"
	"github.com/guidoenr/backdrop/internal/effect"
	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/web"
	"github.com/guidoenr/backdrop/internal/window"
)

func main() {
	var (
		effectName  = flag.String("effect", "dither", "Effect to run ("+strings.Join(effect.Names(), "|")+")")
		host        = flag.String("host", "ansi", "Host (ansi|tcell|web|window)")
		configPath  = flag.String("config", "", "Optional JSON parameter file")
		targetFPS   = flag.Float64("fps", 30, "Target frames per second")
		themeName   = flag.String("theme", "dark", "Page theme (dark|light)")
		addr        = flag.String("addr", ":8080", "Listen address for the web host")
		text        = flag.String("text", "", "Text shown by the ascii effect")
		noColor     = flag.Bool("no-color", false, "Disable ANSI color output")
		trueColor   = flag.Bool("truecolor", false, "Use 24-bit colour escapes")
		autopilot   = flag.Bool("autopilot", false, "Move the pointer automatically")
		profilePath = flag.String("profile", "", "Write per-frame timings as CSV")
		debug       = flag.Bool("debug", false, "Enable verbose logging")
		listEffects = flag.Bool("list-effects", false, "List available effects and exit")
	)

	flag.Parse()

	if *listEffects {
		fmt.Printf("\n=== Effects ===\n\n")
		for _, name := range effect.Names() {
			fmt.Printf("- %s\n", name)
		}
		fmt.Printf("\nHosts: ansi, tcell, web, window (sdl: %v)\n", window.Supported())
		return
	}

	if *targetFPS <= 0 {
		log.Fatalf("fps must be positive (got %.2f)", *targetFPS)
	}

	th, err := theme.Parse(*themeName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	cfg := params.Defaults()
	if *configPath != "" {
		if cfg, err = params.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *text != "" {
		cfg.ASCII.Text = *text
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stdout, "[backdrop] ", log.LstdFlags)
	if !*debug {
		logger.SetOutput(os.Stderr)
		logger.SetFlags(0)
	}

	switch *host {
	case "web":
		s := web.NewServer(web.Config{Params: cfg, FPS: *targetFPS, Theme: th, Log: logger})
		if err := s.Start(ctx, *addr); err != nil {
			logger.Fatalf("web server: %v", err)
		}
		return
	case "window":
		err := window.Run(ctx, window.Config{Effect: *effectName, Params: cfg, FPS: *targetFPS, Theme: th, Log: logger})
		if err != nil && ctx.Err() == nil {
			logger.Fatalf("window: %v", err)
		}
		return
	case "ansi", "tcell":
	default:
		logger.Fatalf("unknown host %q", *host)
	}

	width, height := 80, 24
	if fd := int(os.Stdout.Fd()); fd >= 0 {
		if w, h, err := term.GetSize(fd); err == nil {
			if w > 0 {
				width = w
			}
			if h > 0 {
				height = h
			}
		}
	}

	appConfig := app.Config{
		Effect:      *effectName,
		Params:      cfg,
		Width:       width,
		Height:      height,
		TargetFPS:   *targetFPS,
		Backend:     *host,
		Theme:       th,
		UseANSI:     !*noColor,
		TrueColor:   *trueColor,
		Autopilot:   *autopilot,
		ProfilePath: *profilePath,
		Log:         logger,
	}

	a, err := app.New(appConfig)
	if err != nil {
		logger.Fatalf("failed to create app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nExiting...")
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
}
