package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drake/dmconnect/config"
	"github.com/drake/dmconnect/debug"
	"github.com/drake/dmconnect/internal/logger"
	"github.com/drake/dmconnect/lua"
	"github.com/drake/dmconnect/network"
	"github.com/drake/dmconnect/session"
	"github.com/drake/dmconnect/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "dmconnect:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.File(), "Path to settings.yaml")
	host := flag.String("host", "", "Server host (overrides connection.host)")
	port := flag.Uint("port", 0, "Server port (overrides connection.port)")
	login := flag.String("login", "", "Login name (overrides connection.login)")
	password := flag.String("password", "", "Password (prefer DMCONNECT_PASSWORD)")
	script := flag.String("script", "", "Lua script to load after init.lua")
	simpleUI := flag.Bool("simple", false, "Use simple console UI instead of TUI")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *simpleUI {
		cfg.Logging.ConsoleEnabled = true
	}

	log, err := logger.Initialize(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Close()

	creds := cfg.Credentials()
	if *host != "" {
		creds.Host = *host
	}
	if *port != 0 {
		if *port > network.MaxPort {
			return fmt.Errorf("port must be between 1 and %d", network.MaxPort)
		}
		creds.Port = uint16(*port)
	}
	if *login != "" {
		creds.Login = *login
	}
	if *password != "" {
		creds.Password = *password
	}

	link, err := newLink(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(cfg.Session(), link, log)
	defer func() {
		if err := sess.Shutdown(); err != nil {
			log.Warn("Shutdown incomplete", "error", err)
		}
	}()
	debug.NewMonitor(ctx, sess, log).Start()

	chat := ui.NewChat(sess, ui.Options{
		Credentials:     creds,
		RefreshInterval: cfg.UI.RefreshInterval,
		MaxLines:        cfg.UI.MaxLines,
		MaxLineLength:   cfg.UI.MaxLineLength,
	})

	engine := lua.NewEngine(chat, log)
	defer engine.Close()
	if err := loadScripts(engine, *script); err != nil {
		chat.Print("[error] loading scripts: " + err.Error())
	}
	chat.SetScripts(engine)

	logger.Always("DMconnect starting", "debug", bool(cfg.Global.Debug), "mode", cfg.Mode().String(), "address", creds.Address())

	if creds.Validate() == nil {
		chat.Reconnect()
	} else {
		chat.Print("Set connection.host, port, login and password in " + *configPath + ", then type /reconnect")
	}

	if *simpleUI {
		return ui.NewConsole(chat, os.Stdin, os.Stdout).Run(ctx)
	}
	return ui.RunTUI(ctx, chat)
}

// newLink returns the canned link in debug mode and a real client otherwise.
func newLink(cfg *config.Config, log *slog.Logger) (session.Link, error) {
	if cfg.Global.Debug {
		log.Info("Debug mode, serving canned data")
		return network.NewCanned(uint64(time.Now().UnixNano())), nil
	}
	ncfg := cfg.Network()
	ncfg.Logger = log
	return network.NewClient(ncfg)
}

func loadScripts(e *lua.Engine, extra string) error {
	if err := e.Init(); err != nil {
		return err
	}
	if err := e.LoadInit(config.InitFile()); err != nil {
		return err
	}
	if extra != "" {
		return e.DoFile(extra)
	}
	return nil
}
