package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/citytransit/arrivalwatch/app/arrival-watch/ingester"
	"github.com/citytransit/arrivalwatch/app/arrival-watch/watch"
	"github.com/citytransit/arrivalwatch/business/data/gtfs"
	"github.com/citytransit/arrivalwatch/business/data/gtfsrt"
	"github.com/nats-io/nats.go"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "ARRIVAL_WATCH : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		Feed struct {
			StaticUrl      string `conf:"default:https://transport.orgp.spb.ru/Portal/transport/internalapi/gtfs/feed.zip"`
			ForecastUrl    string `conf:"default:https://transport.orgp.spb.ru/Portal/transport/internalapi/gtfs/realtime/stopforecast"`
			RefreshSeconds int    `conf:"default:86400"`
		}
		Watch struct {
			PollSeconds int `conf:"default:5"`
		}
		Web struct {
			HttpPort int `conf:"default:8080"`
		}
		NATS struct {
			Url                 string `conf:"default:nats://127.0.0.1:4222"`
			NotificationSubject string `conf:"default:arrival-watch-notifications"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Track transit arrivals and notify watches before departure time"
	const prefix = "ARRIVAL_WATCH"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	// =========================================================================
	// Load the initial feed snapshot

	log.Println("main: Performing initial feed ingest")
	store := gtfs.NewFeedStore()
	feed, err := ingester.IngestFeed(log, cfg.Feed.StaticUrl)
	if err != nil {
		return fmt.Errorf("initial feed ingest: %w", err)
	}
	store.Swap(feed)

	// =========================================================================
	// Start NATS

	log.Println("main: Initializing NATS support")
	natsConn, err := nats.Connect(cfg.NATS.Url)
	if err != nil {
		return fmt.Errorf("connecting to NATS at %s: %w", cfg.NATS.Url, err)
	}
	defer func() {
		log.Println("main: NATS Stopping")
		natsConn.Close()
	}()

	destination := watch.MakeNatsNotificationDestination(natsConn, cfg.NATS.NotificationSubject)
	forecasts := watch.MakeGTFSRTForecastSource(gtfsrt.MakeClient(cfg.Feed.ForecastUrl))
	scheduler := watch.NewScheduler(log, store, forecasts, destination,
		time.Duration(cfg.Watch.PollSeconds)*time.Second)

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	wg := sync.WaitGroup{}
	webShutdown := make(chan bool, 1)
	refreshShutdown := make(chan bool, 1)

	go watch.RunWebService(log, &wg, store, scheduler, cfg.Web.HttpPort, webShutdown)
	go ingester.RunFeedRefreshLoop(log, &wg, store, cfg.Feed.StaticUrl, cfg.Feed.RefreshSeconds, refreshShutdown)

	<-shutdown
	log.Println("main: shutdown signal received")
	webShutdown <- true
	refreshShutdown <- true
	wg.Wait()
	return nil
}
