package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dd0wney/cluso-gridswitch/pkg/config"
	"github.com/dd0wney/cluso-gridswitch/pkg/events"
	"github.com/dd0wney/cluso-gridswitch/pkg/logging"
	"github.com/dd0wney/cluso-gridswitch/pkg/metrics"
	"github.com/dd0wney/cluso-gridswitch/pkg/results"
	"github.com/dd0wney/cluso-gridswitch/pkg/topology"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Engine configuration file (YAML)")
		scenarioFile = flag.String("scenario", "", "Network scenario file or s3://bucket/key (YAML)")
		closeList    = flag.String("close", "", "Comma-separated switches to close after initialization")
		openList     = flag.String("open", "", "Comma-separated switches to open after initialization")
		logLevel     = flag.String("log-level", "", "Override logging.level (debug, info, warn, error)")
		keepResults  = flag.Bool("keep-results", false, "Do not reset results when switching")
		showEvents   = flag.Bool("events", false, "Print topology change events")
	)
	flag.Parse()

	if *scenarioFile == "" {
		log.Fatal("--scenario is required")
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	level := cfg.LogLevel()
	if *logLevel != "" {
		level = logging.ParseLevel(*logLevel)
	}
	logger := logging.NewJSONLogger(os.Stderr, level)
	logging.SetDefaultLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var objects config.ObjectGetter
	if _, _, ok := config.ParseS3URI(*scenarioFile); ok {
		client, err := config.NewS3Client(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to create S3 client: %v", err)
		}
		objects = client
	}
	scenario, err := config.FetchScenario(ctx, objects, *scenarioFile)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}
	net, err := scenario.BuildNetwork()
	if err != nil {
		log.Fatalf("Failed to build network: %v", err)
	}
	switches, err := scenario.TopologySwitches()
	if err != nil {
		log.Fatalf("Invalid switches: %v", err)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	bus := events.NewBus(64)
	defer bus.Close()
	var changes *events.Subscription
	if *showEvents {
		changes, err = bus.Subscribe(ctx, events.TopicTopology)
		if err != nil {
			log.Fatalf("Failed to subscribe: %v", err)
		}
	}
	if cfg.Events.Listen != "" {
		fwd, err := events.NewForwarder(ctx, bus, events.ForwarderConfig{
			Listen:   cfg.Events.Listen,
			Compress: cfg.Events.Compress,
		}, logger)
		if err != nil {
			log.Fatalf("Failed to start event forwarder: %v", err)
		}
		defer fwd.Close()
	}

	engine := topology.New(net,
		topology.WithLogger(logger),
		topology.WithMetrics(reg),
		topology.WithEvents(bus),
		topology.WithInvalidator(results.NewInvalidator(net, logger, reg)),
		topology.WithConnectedBusPrefix(cfg.Topology.ConnectedBusPrefix),
	)

	if err := engine.InitSwitches(switches...); err != nil {
		log.Fatalf("Failed to initialize switches: %v", err)
	}
	if ids := splitList(*closeList); len(ids) > 0 {
		if err := engine.CloseSwitches(ids, *keepResults); err != nil {
			log.Fatalf("Failed to close switches: %v", err)
		}
	}
	if ids := splitList(*openList); len(ids) > 0 {
		if err := engine.OpenSwitches(ids, *keepResults); err != nil {
			log.Fatalf("Failed to open switches: %v", err)
		}
	}

	fmt.Println(renderTopology(engine, net))
	if changes != nil {
		fmt.Println(renderEvents(drain(changes)))
	}
	if reg != nil {
		summary, err := renderMetrics(reg)
		if err != nil {
			log.Fatalf("Failed to gather metrics: %v", err)
		}
		fmt.Println(summary)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// drain collects the events already buffered on sub without blocking.
func drain(sub *events.Subscription) []events.TopologyChanged {
	var out []events.TopologyChanged
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}
