package vm

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rtm0/mwr/internal/mwr"
)

// Client is a Victoria Metrics client capable of inserting MWR records via
// various protocols.
type Client struct {
	logger       *slog.Logger
	httpCli      *http.Client
	insertURL    string
	metricPrefix string
	recToText    recToTextFunc
}

const metricPrefixRE = "^[a-zA-Z0-9]+$"

// NewClient creates a new VM client.
func NewClient(logger *slog.Logger, insertURL string, maxConns int, metricPrefix string) (*Client, error) {
	url, err := url.Parse(insertURL)
	if err != nil {
		return nil, err
	}

	matches, err := regexp.Match(metricPrefixRE, []byte(metricPrefix))
	if err != nil {
		return nil, err
	}
	if !matches {
		return nil, fmt.Errorf("metric prefix %q does not match %q regular expression", metricPrefix, metricPrefixRE)
	}

	apiParams := apiParamsFuncs[url.Path]
	if apiParams == nil {
		return nil, fmt.Errorf("inserting into %q is not supported", insertURL)
	}
	q := url.Query()
	for name, value := range apiParams(metricPrefix) {
		q.Add(name, value)
	}
	url.RawQuery = q.Encode()

	recToText := recToTextFuncs[url.Path]
	if recToText == nil {
		return nil, fmt.Errorf("inserting into %q is not supported", insertURL)
	}

	return &Client{
		logger: logger,
		httpCli: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        maxConns,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: maxConns,
				MaxConnsPerHost:     maxConns,
			},
		},
		insertURL:    url.String(),
		metricPrefix: metricPrefix,
		recToText:    recToText,
	}, nil
}

// Insert inserts MWR records into Victoria Metrics.
func (c *Client) Insert(recs []mwr.Record) error {
	res, err := c.httpCli.Post(c.insertURL, "text/plain", recsToText(recs, c.metricPrefix, c.recToText))
	if err != nil {
		c.logger.Error("Could not post data", "err", err)
		return err
	}
	defer res.Body.Close()
	if _, err := io.Copy(io.Discard, res.Body); err != nil {
		c.logger.Error("Failed to drain response body", "err", err)
	}
	if res.StatusCode != http.StatusNoContent {
		c.logger.Error("Unexpected status", "code", res.StatusCode)
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return nil
}

type apiParamsFunc func(string) map[string]string

var apiParamsFuncs = map[string]apiParamsFunc{
	"/influx/write":        influxDBAPIParams,
	"/influx/api/v2/write": influxDBAPIParams,
	"/write":               influxDBAPIParams,
	"/api/v2/write":        influxDBAPIParams,
	"/api/v1/import/csv":   csvAPIParams,
}

// influxDBAPIParams sets the timestamp precision: records carry Unix
// milliseconds and VM defaults to nanoseconds.
func influxDBAPIParams(metricPrefix string) map[string]string {
	return map[string]string{"precision": "ms"}
}

func csvAPIParams(metricPrefix string) map[string]string {
	return map[string]string{
		"format": fmt.Sprintf(""+
			"1:time:unix_ms,"+
			"2:label:ch,"+
			"3:label:horn,"+
			"4:label:scan,"+
			"5:label:fov,"+
			"6:label:la,"+
			"7:label:lo,"+
			"8:metric:%[1]s_tb,"+
			"9:metric:%[1]s_sza,"+
			"10:metric:%[1]s_vza", metricPrefix),
	}
}

type recToTextFunc func(*strings.Builder, *mwr.Record, string)

// recsToText converts multiple MWR records to text.
func recsToText(recs []mwr.Record, metricPrefix string, recToText recToTextFunc) io.Reader {
	var sb strings.Builder
	for _, r := range recs {
		recToText(&sb, &r, metricPrefix)
		sb.WriteString("\n")
	}
	return strings.NewReader(sb.String())
}

var recToTextFuncs = map[string]recToTextFunc{
	"/influx/write":        recToInfluxDB,
	"/influx/api/v2/write": recToInfluxDB,
	"/write":               recToInfluxDB,
	"/api/v2/write":        recToInfluxDB,
	"/api/v1/import/csv":   recToCSV,
}

var influxDBFmt = "%s,ch=%d,horn=%d,scan=%d,fov=%d,la=%.4f,lo=%.4f tb=%.3f,sza=%.2f,vza=%.2f %d"

// recToInfluxDB converts an MWR record into InfluxDB line protocol v2 and
// appends it to the string builder. Timestamps are in milliseconds.
func recToInfluxDB(sb *strings.Builder, r *mwr.Record, metricPrefix string) {
	sb.WriteString(fmt.Sprintf(influxDBFmt, []any{
		metricPrefix,
		r.Channel,
		r.Horn,
		r.Scan,
		r.FOV,
		r.Latitude,
		r.Longitude,
		r.BrightnessTemperature,
		r.SolarZenith,
		r.SatelliteZenith,
		r.Timestamp,
	}...))
}

var csvFmt = "%d,%d,%d,%d,%d,%.4f,%.4f,%.3f,%.2f,%.2f"

// recToCSV converts an MWR record into a CSV record and appends it to the
// string builder.
func recToCSV(sb *strings.Builder, r *mwr.Record, _ string) {
	sb.WriteString(fmt.Sprintf(csvFmt, []any{
		r.Timestamp,
		r.Channel,
		r.Horn,
		r.Scan,
		r.FOV,
		r.Latitude,
		r.Longitude,
		r.BrightnessTemperature,
		r.SolarZenith,
		r.SatelliteZenith,
	}...))
}
