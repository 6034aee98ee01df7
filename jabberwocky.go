// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package main

import (
	"crypto/tls"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/docopt/docopt-go"

	irc "github.com/alicenq/Jabberwocky/lib"
	"github.com/alicenq/Jabberwocky/lib/subroutines"
)

// QuitSignals is the list of signals we quit on
var QuitSignals = []os.Signal{syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT}

func main() {
	usage := `Jabberwocky.

Jabberwocky is an IRC bot engine built around blocking message subroutines.

Usage:
	jabberwocky init [--conf <filename>]
	jabberwocky start [--conf <filename>]
	jabberwocky -h | --help
	jabberwocky --version

Options:
	--conf <filename>  Configuration file to use [default: jabberwocky.yaml].
	-h --help          Show this screen.
	--version          Show version.`

	arguments, _ := docopt.Parse(usage, nil, true, irc.SemVer, false)

	configfile := arguments["--conf"].(string)
	config, err := irc.LoadConfig(configfile)
	if err != nil {
		log.Fatal("Config file did not load successfully: ", err.Error())
	}

	logger := newLogger(config.LogLevel)
	slog.SetDefault(logger)

	if arguments["init"].(bool) {
		runInit(config)
	} else if arguments["start"].(bool) {
		runStart(config, logger)
	}
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "", "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		log.Fatal("Unknown log-level: ", level)
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel,
	}))
}

func runInit(config *irc.Config) {
	Section("Initialising Jabberwocky")

	store, err := irc.OpenDataStore(config.Storage.Path)
	if err != nil {
		Error(err.Error())
		os.Exit(1)
	}
	store.Close()

	Note("Datastore created at " + config.Storage.Path)
	Note("Edit your config and run: jabberwocky start")
}

func runStart(config *irc.Config, logger *slog.Logger) {
	Section("Starting " + CbCyan("Jabberwocky"))

	store, err := irc.OpenDataStore(config.Storage.Path)
	if err != nil {
		log.Fatalln(err.Error())
	}
	defer store.Close()

	server := irc.NewServer(config.Server.Address, config.Server.Port)
	server.SetLogger(logger)
	server.MaxReadErrors = config.ReadErrorThreshold()

	server.Socket.TLS = config.Server.TLS
	if config.Server.TLS {
		server.Socket.TLSConfig = &tls.Config{
			InsecureSkipVerify: !config.Server.VerifyTLS,
		}
	}
	sendq, _ := config.SendQBytes()
	server.Socket.MaxSendQ = sendq

	// seed channel bookkeeping from the config, then the datastore
	for _, channel := range config.Channels {
		server.RegisterChannel(channel.Name, channel.Key)
	}
	stored, err := store.Channels()
	if err != nil {
		Warn(err.Error())
	}
	for _, channel := range stored {
		server.RegisterChannel(channel.Name, channel.Key)
	}

	if err := server.Connect(); err != nil {
		log.Fatal("Could not connect: ", err.Error())
	}

	server.RunSubroutineOpts(subroutines.NewConnection(), irc.PriorityHigh, false)
	server.RunSubroutineOpts(subroutines.NewChannelMonitor(store), irc.PriorityNormal, true)

	if config.Proxy.Enabled {
		proxy, err := subroutines.NewProxy(config.Proxy.Key, config.Proxy.Master)
		if err != nil {
			log.Fatal("Bad proxy master pattern: ", err.Error())
		}
		server.RunSubroutine(proxy)
	}

	err = server.Identify(irc.Identity{
		Nick:         config.Identity.Nick,
		FallbackNick: config.Identity.FallbackNick,
		Username:     config.Identity.Username,
		Realname:     config.Identity.Realname,
		Password:     config.Identity.Password,
	})
	if err != nil {
		log.Fatal("Could not identify: ", err.Error())
	}

	quitSignals := make(chan os.Signal, len(QuitSignals))
	signal.Notify(quitSignals, QuitSignals...)

	select {
	case <-quitSignals:
		Note("Shutting down")
		server.Quit("Jabberwocky shutting down")
		server.Socket.Close()
		<-server.Done()
	case <-server.Done():
		Warn("Lost connection to " + config.Server.Address)
	}
}
