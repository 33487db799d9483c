// Package ingester retrieves the static transit dataset archive and builds
// StaticFeed snapshots from it, on demand and on a periodic refresh cycle
package ingester

import (
	"archive/zip"
	"fmt"
	logger "log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/citytransit/arrivalwatch/business/data/gtfs"
	"github.com/citytransit/arrivalwatch/foundation/httpclient"
)

// IngestFeed downloads the dataset archive from url and builds a StaticFeed
// snapshot describing the current service date. Network, archive and
// decompression failures are fatal to the attempt; row level problems inside
// the tables are logged and skipped
func IngestFeed(log *logger.Logger, url string) (*gtfs.StaticFeed, error) {
	downloadDirectory, err := os.MkdirTemp("", "feed")
	if err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(downloadDirectory); err != nil {
			log.Printf("unable to remove download directory %s. error:%v", downloadDirectory, err)
		}
	}()

	localZipFile := filepath.Join(downloadDirectory, "feed.zip")
	start := time.Now()
	downloadedFile, err := httpclient.DownloadRemoteFile(localZipFile, url)
	if err != nil {
		return nil, fmt.Errorf("retrieving dataset archive: %w", err)
	}
	log.Printf("downloaded %d bytes from %s in %v", downloadedFile.Size, url, time.Since(start).Round(time.Millisecond))

	return buildFeedFromArchive(log, downloadedFile.LocalFilePath, time.Now())
}

// buildFeedFromArchive reads the four dataset tables out of the zip archive
// at path. Timestamps are computed for the service date "now" falls on
func buildFeedFromArchive(log *logger.Logger, path string, now time.Time) (*gtfs.StaticFeed, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset archive: %w", err)
	}
	defer func() {
		_ = archive.Close()
	}()

	feed := gtfs.NewStaticFeed()
	serviceDate := gtfs.ServiceDate(now)
	seen := map[string]bool{}

	for _, entry := range archive.File {
		name := filepath.Base(entry.Name)
		switch name {
		case "routes.txt", "stops.txt", "trips.txt", "stop_times.txt":
		default:
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s in dataset archive: %w", name, err)
		}
		switch name {
		case "routes.txt":
			err = readRoutes(log, rc, feed)
		case "stops.txt":
			err = readStops(log, rc, feed)
		case "trips.txt":
			err = readTrips(log, rc, feed)
		case "stop_times.txt":
			err = readStopTimes(log, rc, feed, serviceDate)
		}
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		seen[name] = true
	}

	for _, required := range []string{"routes.txt", "stops.txt", "trips.txt", "stop_times.txt"} {
		if !seen[required] {
			return nil, fmt.Errorf("dataset archive is missing %s", required)
		}
	}

	log.Printf("built feed snapshot for %s: %d route names, %d stops, %d routes with trips, %d trips with stop times",
		serviceDate.Format("2006-01-02"), len(feed.Routes.Names), len(feed.Stops), len(feed.Trips), len(feed.StopTimes))
	return feed, nil
}

// RunFeedRefreshLoop periodically rebuilds the feed snapshot and swaps it
// into store. The dataset always describes "today", so the rebuild happens on
// every cycle even when the upstream archive is unchanged; the archive check
// only feeds the log. A failed refresh keeps the previous snapshot live
func RunFeedRefreshLoop(log *logger.Logger,
	wg *sync.WaitGroup,
	store *gtfs.FeedStore,
	url string,
	refreshEverySeconds int,
	shutdownSignal chan bool) {

	wg.Add(1)
	defer wg.Done()

	refreshDuration := time.Duration(refreshEverySeconds) * time.Second

	sleepChan := make(chan bool)
	sleep := refreshDuration
	var lastInfo httpclient.RemoteFileInfo

	for {
		go func() {
			time.Sleep(sleep)
			sleepChan <- true
		}()

		select {
		case <-shutdownSignal:
			log.Printf("exiting feed refresh loop on shutdown signal")
			return
		case <-sleepChan:
		}

		sleep = refreshDuration
		start := time.Now()

		remoteInfo, err := httpclient.GetRemoteFileInfo(url)
		if err != nil {
			log.Printf("unable to check remote dataset archive, continuing with refresh. error:%v", err)
		} else if !remoteInfo.IsDifferent(lastInfo.ETag, lastInfo.LastModifiedTimestamp) {
			log.Printf("upstream archive unchanged, rebuilding for the current service date")
		}

		feed, err := IngestFeed(log, url)
		if err != nil {
			log.Printf("feed refresh failed, keeping previous snapshot. error:%v", err)
			continue
		}
		if remoteInfo.Path != "" {
			lastInfo = remoteInfo
		}
		store.Swap(feed)
		log.Printf("feed refresh took %v", time.Since(start).Round(time.Millisecond))
	}
}
