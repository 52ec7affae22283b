package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/rtm0/mwr/internal/config"
	"github.com/rtm0/mwr/internal/mwr"
	"github.com/rtm0/mwr/internal/vm"
)

var (
	configFile    = flag.String("config", "", "path to a TOML config file. Flags override its values")
	file          = flag.String("file", "", "path to an MWR level-1B or level-1C file in NetCDF format")
	fileType      = flag.String("file-type", "", "file type of the input, e.g. eps_sterna_mwr_l1b or aws1_mwr_l1c")
	concurrency   = flag.Int("concurrency", 0, "number of concurrent requests to Victoria Metrics. Default: number of CPUs")
	recsPerInsert = flag.Int("recsPerInsert", 0, "number of records sent to VM in one batch")
	vmInsertURL   = flag.String("vmInsertUrl", "", "Victoria Metrics insert API URL. Default: InfluxDB line protocol v2")
	metricPrefix  = flag.String("metricPrefix", "", "prefix of the inserted metric names")
	logLevel      = flag.String("logLevel", "", "log level: debug, info, warn or error")
)

// loadConfig layers the flags that were set on the command line over the
// config file, or over the defaults when no file is given.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return cfg, err
		}
	}
	set := func(name string, apply func()) {
		if flag.CommandLine.Changed(name) {
			apply()
		}
	}
	set("file", func() { cfg.Input.File = *file })
	set("file-type", func() { cfg.Input.FileType = *fileType })
	set("concurrency", func() { cfg.Export.Concurrency = *concurrency })
	set("recsPerInsert", func() { cfg.Export.RecsPerInsert = *recsPerInsert })
	set("vmInsertUrl", func() { cfg.Export.VMInsertURL = *vmInsertURL })
	set("metricPrefix", func() { cfg.Export.MetricPrefix = *metricPrefix })
	set("logLevel", func() { cfg.Logging.Level = *logLevel })

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Input.File == "" {
		return cfg, fmt.Errorf("no input file: set --file or input.file")
	}
	if cfg.Export.Concurrency == 0 {
		cfg.Export.Concurrency = runtime.NumCPU()
	}
	return cfg, nil
}

type inserter interface {
	Insert(recs []mwr.Record) error
}

// insertBatches sends recs in batches of at most batch records. A failed
// batch is logged and skipped.
func insertBatches(logger *slog.Logger, ins inserter, recs []mwr.Record, batch int) {
	n := len(recs)
	for begin := 0; begin < n; begin += batch {
		limit := min(begin+batch, n)
		if err := ins.Insert(recs[begin:limit]); err != nil {
			logger.Warn("Batch dropped", "records", limit-begin, "err", err)
		}
	}
}

// percent formats the share of inserted records. A file without records is
// complete from the start.
func percent(inserted, total int) string {
	if total <= 0 {
		return "100.00%"
	}
	return fmt.Sprintf("%.2f%%", 100*float64(inserted)/float64(total))
}

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	level, _ := cfg.Logging.SlogLevel()
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	vmCli, err := vm.NewClient(logger, cfg.Export.VMInsertURL, cfg.Export.Concurrency, cfg.Export.MetricPrefix)
	if err != nil {
		logger.Error("Could not create new VM client", "err", err)
		os.Exit(1)
	}

	h, err := mwr.Open(cfg.Input.File, cfg.Input.FileType, mwr.Options{
		Logger: logger,
		Scaling: mwr.GeoScaling{
			LonLat: mwr.Scaling{Scale: cfg.Decode.GeoScaleFactor},
			Angle:  mwr.Scaling{Scale: cfg.Decode.AngleScaleFactor},
		},
	})
	if err != nil {
		logger.Error("Could not open the MWR file", "err", err)
		os.Exit(1)
	}
	defer h.Close()

	s, err := mwr.NewScanner(h)
	if err != nil {
		logger.Error("Could not create an MWR scanner", "err", err)
		h.Close()
		os.Exit(1)
	}
	logger.Info("MWR summary", s.Summary()...)

	batch := cfg.Export.RecsPerInsert
	recsCh := make(chan []mwr.Record)
	progressCh := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Export.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for recs := range recsCh {
				insertBatches(logger, vmCli, recs, batch)
				progressCh <- len(recs)
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		inserted, total := 0, s.TotalRecCount()
		start := time.Now()
		for n := range progressCh {
			inserted += n
			duration := time.Since(start).Round(1 * time.Second)
			logger.Info("progress", "inserted", percent(inserted, total), "in", duration)
		}
	}()
	for s.Scan() {
		recsCh <- s.Records()
	}
	close(recsCh)
	wg.Wait()
	close(progressCh)
	<-done
}
