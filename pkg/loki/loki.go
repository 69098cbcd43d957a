package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"
)

type Logger interface {
	Error(msg string, args ...any)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	// Url of the push endpoint, e.g. https://example.grafana.net/loki/api/v1/push
	Url string `validate:"required,url"`

	// BatchMaxSize is the number of lines that triggers an early push.
	BatchMaxSize int `validate:"gte=1"`

	// BatchMaxWait is the longest a line waits before being pushed.
	BatchMaxWait time.Duration `validate:"gte=1"`

	// BufferSize bounds the entries queued while a push is in flight.
	// Entries beyond it are dropped and counted.
	BufferSize int `validate:"gte=1"`

	// Labels are attached to every stream. The entry level is added as "level".
	Labels map[string]string

	TenantKey   string
	TenantValue string
	Username    string
	Password    string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 1000
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 4 * cfg.BatchMaxSize
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

type LogEntry struct {
	Time    time.Time         `json:"-"`
	Level   string            `json:"level"`
	Message string            `json:"msg"`
	Caller  string            `json:"caller,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// Pusher batches log entries and ships them to a Loki push endpoint from one
// background goroutine.
type Pusher struct {
	config  Config
	client  HTTPClient
	logger  Logger
	entries chan LogEntry
	quit    chan struct{}
	done    sync.WaitGroup
	once    sync.Once
	mu      sync.Mutex
	dropped int
}

func New(cfg Config, logger Logger) (*Pusher, error) {
	return NewWithClient(cfg, logger, &http.Client{Timeout: 10 * time.Second})
}

func NewWithClient(cfg Config, logger Logger, client HTTPClient) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	p := &Pusher{
		config:  cfg,
		client:  client,
		logger:  logger,
		entries: make(chan LogEntry, cfg.BufferSize),
		quit:    make(chan struct{}),
	}

	p.done.Add(1)
	go p.run()
	return p, nil
}

// Push queues the entry without blocking. It returns false when the buffer is full.
func (p *Pusher) Push(e LogEntry) bool {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	select {
	case p.entries <- e:
		return true
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		return false
	}
}

func (p *Pusher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Stop flushes queued entries and waits for the last push.
func (p *Pusher) Stop() {
	p.once.Do(func() {
		close(p.quit)
		p.done.Wait()
	})
}

func (p *Pusher) run() {
	defer p.done.Done()

	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	batch := make([]LogEntry, 0, p.config.BatchMaxSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.send(batch); err != nil {
			p.logger.Error("failed to send logs", "error", err, "lines", len(batch))
		}
		batch = batch[:0]
	}

	add := func(entry LogEntry) {
		batch = append(batch, entry)
		if len(batch) >= p.config.BatchMaxSize {
			flush()
		}
	}

	for {
		select {
		case <-p.quit:
			for {
				select {
				case entry := <-p.entries:
					add(entry)
				default:
					flush()
					return
				}
			}
		case entry := <-p.entries:
			add(entry)
		case <-ticker.C:
			flush()
		}
	}
}

func (p *Pusher) buildRequest(batch []LogEntry) pushRequest {
	byLevel := make(map[string]*stream)
	for _, entry := range batch {
		line, err := json.Marshal(entry)
		if err != nil {
			continue
		}

		s, ok := byLevel[entry.Level]
		if !ok {
			labels := make(map[string]string, len(p.config.Labels)+1)
			for key, value := range p.config.Labels {
				labels[key] = value
			}
			labels["level"] = entry.Level
			s = &stream{Stream: labels}
			byLevel[entry.Level] = s
		}
		s.Values = append(s.Values, [2]string{strconv.FormatInt(entry.Time.UnixNano(), 10), string(line)})
	}

	levels := make([]string, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Strings(levels)

	request := pushRequest{Streams: make([]stream, 0, len(levels))}
	for _, level := range levels {
		request.Streams = append(request.Streams, *byLevel[level])
	}
	return request
}

func (p *Pusher) send(batch []LogEntry) error {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)

	if err := json.NewEncoder(gz).Encode(p.buildRequest(batch)); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Url, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	if p.config.TenantKey != "" {
		req.Header.Set(p.config.TenantKey, p.config.TenantValue)
	}
	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected response code from Loki: %s, body: %s", resp.Status, string(body))
	}

	return nil
}
