package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvu/mailquar/internal/api"
	"github.com/nvu/mailquar/internal/app"
	"github.com/nvu/mailquar/internal/logging"
	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/quarantine"
	"github.com/nvu/mailquar/internal/reload"
	"github.com/nvu/mailquar/internal/session"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [quarantine-url]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A quarantine-url is the link from a spam report mail; when given,\n")
		fmt.Fprintf(os.Stderr, "its embedded ticket is used to log in automatically.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load configuration: %v\n", err)
		os.Exit(1)
	}

	var ticket *session.TicketLogin
	if raw := flag.Arg(0); raw != "" {
		login, ok := session.ParseQuarantineURL(raw)
		if !ok {
			fmt.Fprintf(os.Stderr, "Not a quarantine link: %s\n", raw)
			os.Exit(1)
		}
		ticket = &login

		// A first run has no server configured; take it from the link.
		if cfg.Server.URL == "" {
			if u, err := url.Parse(raw); err == nil {
				cfg.Server.URL = u.Scheme + "://" + u.Host
				if err := model.SaveConfig(*configPath, cfg); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: cannot save configuration: %v\n", err)
				}
			}
		}
	}

	if cfg.Server.URL == "" {
		fmt.Fprintf(os.Stderr, "No gateway configured. Set server.url in %s or pass a quarantine link.\n", *configPath)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Display.LogFile, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	refresh := time.Duration(cfg.Session.TicketRefreshSec) * time.Second
	sess := session.NewStore(nil, session.KeyringCache{}, refresh, log)
	client := api.NewClient(cfg.Server.URL, cfg.Server.InsecureSkipVerify, sess, log)
	sess.SetClient(client)

	// A ticket from the link takes precedence over a cached session.
	if ticket == nil {
		sess.Restore()
	}

	gateway := quarantine.NewGateway(client)
	coord := reload.New()

	p := tea.NewProgram(app.New(cfg, sess, gateway, coord, ticket, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sess.StopRefresh()
}
