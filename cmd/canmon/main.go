package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samsamfire/gosysdef/pkg/can"
	_ "github.com/samsamfire/gosysdef/pkg/can/socketcan"
	_ "github.com/samsamfire/gosysdef/pkg/can/socketcanraw"
	_ "github.com/samsamfire/gosysdef/pkg/can/virtual"
	"github.com/samsamfire/gosysdef/pkg/interpreter"
	_ "github.com/samsamfire/gosysdef/pkg/interpreter/canopen"
	_ "github.com/samsamfire/gosysdef/pkg/interpreter/kefex"
	_ "github.com/samsamfire/gosysdef/pkg/interpreter/l2"
	_ "github.com/samsamfire/gosysdef/pkg/interpreter/ssp"
	"github.com/samsamfire/gosysdef/pkg/monitor"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Command line arguments, they override the configuration file
	configPath := flag.String("c", "", "configuration file")
	canInterface := flag.String("i", "", fmt.Sprintf("CAN interface type %v", can.Interfaces()))
	channel := flag.String("channel", "", "CAN channel e.g. can0, vcan0, localhost:18888")
	protocols := flag.String("p", "", fmt.Sprintf("comma separated protocols %v", interpreter.Names()))
	showTimestamp := flag.Bool("t", false, "show timestamps")
	logLevel := flag.String("l", "", "log level")
	flag.Parse()

	config := defaultConfig()
	if *configPath != "" {
		var err error
		config, err = LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load configuration : %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			config.Interface = *canInterface
		case "channel":
			config.Channel = *channel
		case "p":
			config.Protocols = splitList(*protocols)
		case "t":
			config.ShowTimestamp = *showTimestamp
		case "l":
			config.LogLevel = *logLevel
		}
	})

	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level : %v", err)
	}
	log.SetLevel(level)

	chain, err := interpreter.NewChainFromNames(config.Protocols)
	if err != nil {
		log.Fatal(err)
	}
	bus, err := can.NewBus(config.Interface, config.Channel)
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("[CANMON] monitoring %v on %v with %v", config.Channel, config.Interface, config.Protocols)
	m := monitor.New(os.Stdout, chain, monitor.WithTimestamp(config.ShowTimestamp))
	if err := m.Run(ctx, bus); err != nil {
		log.Fatal(err)
	}
}
