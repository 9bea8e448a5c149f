// Package vizserver streams a running flock simulation to web
// browsers. It serves a canvas page at / and pushes one JSON frame
// per tick over a websocket at /ws.
package vizserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/multierr"

	"github.com/PrincetonUniversity/boidswarm"
)

// Config holds the parameters of the viz driver.
type Config struct {
	Addr   string        // listen address, for example :8701
	Period time.Duration // wall-clock duration of one tick; 0 means 50ms
	Steps  int           // ticks to serve before shutting down; 0 means no limit
	Step   func() error  // advance to the next tick
}

// Run serves the simulation until Steps ticks have been served, the
// step function fails, the HTTP server fails, or an interrupt arrives.
func Run(m *boidswarm.Model, conf *Config) error {
	period := conf.Period
	if period <= 0 {
		period = 50 * time.Millisecond
	}

	s := &service{watchers: make(map[*watcher]struct{})}
	s.update(m)

	router := mux.NewRouter()
	router.HandleFunc("/", s.home).Methods("GET")
	router.HandleFunc("/state", s.state).Methods("GET")
	router.HandleFunc("/ws", s.websocket)

	srv := &http.Server{
		Addr:    conf.Addr,
		Handler: handlers.CombinedLoggingHandler(os.Stdout, router),
	}
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()
	log.Printf("viz: listening on %s", conf.Addr)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var runErr error
	ticks := 0
loop:
	for {
		select {
		case err := <-srvErr:
			runErr = err
			break loop
		case <-interrupt:
			log.Print("viz: interrupted, shutting down")
			break loop
		case <-ticker.C:
			if err := conf.Step(); err != nil {
				runErr = err
				break loop
			}
			s.update(m)
			ticks++
			if conf.Steps > 0 && ticks >= conf.Steps {
				break loop
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return multierr.Combine(runErr, srv.Shutdown(ctx), s.close())
}

// service fans simulation frames out to connected watchers.
type service struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	watchers map[*watcher]struct{}
	latest   []byte
}

// A watcher is one connected websocket client.
type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

// update encodes the current state of the model and broadcasts it.
// Watchers that cannot keep up skip frames instead of stalling the
// simulation.
func (s *service) update(m *boidswarm.Model) {
	b, err := json.Marshal(newFrame(m))
	if err != nil {
		log.Printf("viz: encode frame: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = b
	for w := range s.watchers {
		select {
		case w.send <- b:
		default:
		}
	}
}

func (s *service) add(w *watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers[w] = struct{}{}
}

func (s *service) remove(w *watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watchers[w]; !ok {
		return
	}
	delete(s.watchers, w)
	close(w.send)
	w.conn.Close()
}

// close disconnects all remaining watchers.
func (s *service) close() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.watchers {
		delete(s.watchers, w)
		close(w.send)
		err = multierr.Append(err, w.conn.Close())
	}
	return err
}

func (s *service) home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, homePage)
}

// state serves the most recent frame, for clients that prefer polling
// over the websocket stream.
func (s *service) state(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	b := s.latest
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

func (s *service) websocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("viz: upgrade: %v", err)
		return
	}

	wa := &watcher{conn: conn, send: make(chan []byte, 8)}
	s.add(wa)
	go wa.writePump()

	// the read loop only serves to detect the client going away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.remove(wa)
}

func (w *watcher) writePump() {
	for msg := range w.send {
		if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// A frame is the drawable state of the flock at one tick.
type frame struct {
	Tick         int         `json:"tick"`
	Extent       [2]float64  `json:"extent"`
	Polarization float64     `json:"polarization"`
	Boids        []frameBoid `json:"boids"`
}

type frameBoid struct {
	Pos [2]float64 `json:"pos"`
	Vel [2]float64 `json:"vel"`
}

func newFrame(m *boidswarm.Model) frame {
	f := frame{
		Tick:         m.Tick(),
		Extent:       [2]float64{m.Torus.Extent.X, m.Torus.Extent.Y},
		Polarization: boidswarm.Polarization(m),
		Boids:        make([]frameBoid, len(m.Boids)),
	}
	for i, b := range m.Boids {
		f.Boids[i] = frameBoid{
			Pos: [2]float64{b.Pos.X, b.Pos.Y},
			Vel: [2]float64{b.Vel.X, b.Vel.Y},
		}
	}
	return f
}
