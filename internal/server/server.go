package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/replica/internal/core/interest"
	"github.com/zeusync/replica/internal/core/models"
	"github.com/zeusync/replica/internal/core/observability/log"
	"github.com/zeusync/replica/internal/core/replication"
	"github.com/zeusync/replica/pkg/concurrent"
)

// Config holds demo host configuration.
type Config struct {
	ListenAddr string        `json:"listen_addr" yaml:"listen_addr"`
	TickEvery  time.Duration `json:"tick_every" yaml:"tick_every"`
	SendLimit  int           `json:"send_limit" yaml:"send_limit"`
	LogLevel   log.Level     `json:"log_level" yaml:"log_level"`

	Replication replication.Config    `json:"replication" yaml:"replication"`
	Radius      interest.RadiusConfig `json:"radius" yaml:"radius"`
}

// DefaultConfig returns the default host configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:  "127.0.0.1:8080",
		TickEvery:   50 * time.Millisecond,
		SendLimit:   64,
		LogLevel:    log.LevelInfo,
		Replication: replication.DefaultConfig(),
		Radius:      interest.DefaultRadiusConfig(),
	}
}

// Server is a demo host around one replication manager: it registers an
// avatar per connected websocket observer, runs the tick loop and pushes one
// encoded batch per observer per tick.
//
// The manager has no internal locking, so everything that touches it runs on
// the tick goroutine; connection handlers submit closures through the command
// channel instead of calling the manager directly.
type Server struct {
	config  Config
	logger  log.Log
	manager *replication.Manager
	codec   replication.BatchCodec

	mu      sync.Mutex
	clients map[models.EntityID]*client
	nextID  models.EntityID

	commands chan func()
	httpSrv  *http.Server
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewServer creates the host with a manager wired to a spatial radius policy.
// When no explicit radius thresholds are configured they are derived from the
// replication config's interest radius.
func NewServer(config Config) *Server {
	logger := log.New(config.LogLevel)
	manager := replication.NewManager(config.Replication, logger)
	radius := config.Radius
	if radius == (interest.RadiusConfig{}) {
		radius = interest.RadiusConfigFor(config.Replication.InterestRadius)
	}
	manager.SetInterestPolicy(interest.NewSpatialRadius(radius))

	return &Server{
		config:   config,
		logger:   logger,
		manager:  manager,
		codec:    replication.NewJSONBatchCodec(),
		clients:  make(map[models.EntityID]*client),
		nextID:   1,
		commands: make(chan func(), 256),
		stopped:  make(chan struct{}),
	}
}

// Start begins serving websocket observers and runs the tick loop until the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.httpSrv = &http.Server{Addr: s.config.ListenAddr, Handler: mux}

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", log.Error(err))
		}
	}()
	go s.tickLoop(ctx)

	s.logger.Info("server started",
		log.String("addr", s.config.ListenAddr),
		log.Duration("tick_every", s.config.TickEvery))
	return nil
}

// Stop shuts the host down and closes every connection.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopped)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.httpSrv != nil {
			err = s.httpSrv.Shutdown(ctx)
		}
		s.mu.Lock()
		for _, c := range s.clients {
			c.close()
		}
		s.mu.Unlock()
	})
	return err
}

// tickLoop owns the manager. Each tick it drains pending commands, then
// builds one batch per connected observer and fans the encoded payloads out
// to the connections.
func (s *Server) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.TickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopped:
			return
		case command := <-s.commands:
			command()
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Server) tick() {
	// Drain commands queued since the last tick so inputs apply before
	// batches are built.
	for {
		select {
		case command := <-s.commands:
			command()
			continue
		default:
		}
		break
	}

	s.mu.Lock()
	observers := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		observers = append(observers, c)
	}
	s.mu.Unlock()

	type outbound struct {
		target  *client
		payload []byte
	}
	sends := make([]outbound, 0, len(observers))

	// Batch creation mutates manager state and stays on this goroutine;
	// only the sends fan out.
	for _, c := range observers {
		batch := s.manager.CreateBatch(c.entityID)
		if batch.IsEmpty() {
			continue
		}
		payload, err := s.codec.Encode(batch)
		if err != nil {
			s.logger.Error("encode batch failed",
				log.Int64("observer", int64(c.entityID)),
				log.Error(err))
			continue
		}
		sends = append(sends, outbound{target: c, payload: payload})
	}

	_ = concurrent.ForEach(sends, func(out outbound) error {
		out.target.send(out.payload)
		return nil
	})
}

// submit queues a closure for execution on the tick goroutine.
func (s *Server) submit(command func()) {
	select {
	case s.commands <- command:
	case <-s.stopped:
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c.entityID] = c
	s.mu.Unlock()

	s.submit(func() {
		s.manager.Register(c.avatar)
	})
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c.entityID)
	s.mu.Unlock()

	s.submit(func() {
		s.manager.Unregister(c.entityID)
	})
}

func (s *Server) allocateID() models.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("http://%s/ws", s.config.ListenAddr)
}
