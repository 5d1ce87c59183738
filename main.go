package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/IronCretin/bytepole2/api"
	"github.com/IronCretin/bytepole2/repl"
	"go.uber.org/zap"
)

var (
	apiAddr string
	rawTerm bool
	debug   bool
)

func init() {
	flag.StringVar(&apiAddr, "api", "", "also serve the HTTP api on this address")
	flag.BoolVar(&rawTerm, "raw", false, "raw terminal mode, so ':' reads single keystrokes")
	flag.BoolVar(&debug, "debug", false, "per-instruction debug logging")
	flag.Parse()
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("%s", err)
	}
	zap.ReplaceGlobals(l)

	if apiAddr != "" {
		srv, err := api.NewServer(api.ServerConfig{
			ListenerAddr: apiAddr,
			Logger:       l,
		})
		if err != nil {
			l.Error("api setup", zap.Error(err))
			return 1
		}
		go func() {
			if err := srv.Start(); err != nil {
				l.Error("api server", zap.Error(err))
			}
		}()
	}

	if rawTerm {
		if err := enterRawTerm(); err != nil {
			l.Error("raw terminal", zap.Error(err))
			return 1
		}
		defer exitRawTerm()
	}

	r, err := repl.NewRepl(repl.ReplOpts{Logger: l})
	if err != nil {
		l.Error("repl setup", zap.Error(err))
		return 1
	}
	if err := r.Run(context.Background()); err != nil {
		l.Error("repl", zap.Error(err))
		return 1
	}
	return 0
}
