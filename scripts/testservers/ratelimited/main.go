// Command ratelimited serves a target that throttles each client with a token
// bucket, for trying ratelimit-probe locally.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	rps := flag.Float64("rate", 2, "Requests per second allowed per client")
	burst := flag.Int("burst", 5, "Burst size per client")
	trustXFF := flag.Bool("trust-forwarded-for", true, "Key clients by the first X-Forwarded-For address when present")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}
	if *rps <= 0 || *burst <= 0 {
		log.Fatalf("rate and burst must be > 0")
	}

	handler := newLimitedHandler(rate.Limit(*rps), *burst, *trustXFF)
	addr := fmt.Sprintf(":%d", *port)
	log.Printf("rate-limited server listening on %s (%.2f rps, burst %d per client)", addr, *rps, *burst)
	log.Fatal(http.ListenAndServe(addr, handler))
}

const (
	sweepInterval     = 10 * time.Second
	defaultMaxClients = 10000
)

// limitedHandler answers 200 while the caller's bucket has tokens and 429
// once it is drained. Buckets idle long enough to have refilled are dropped,
// and the table never holds more than maxClients entries.
type limitedHandler struct {
	mu         sync.Mutex
	clients    map[string]*clientBucket
	limit      rate.Limit
	burst      int
	trustXFF   bool
	idleTTL    time.Duration
	maxClients int
	lastSweep  time.Time
	now        func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimitedHandler(limit rate.Limit, burst int, trustXFF bool) *limitedHandler {
	return &limitedHandler{
		clients:    make(map[string]*clientBucket),
		limit:      limit,
		burst:      burst,
		trustXFF:   trustXFF,
		idleTTL:    refillTime(limit, burst),
		maxClients: defaultMaxClients,
		now:        time.Now,
	}
}

func (h *limitedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	client := h.clientKey(r)
	if !h.allow(client) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(h.limit)))
		respondJSON(w, http.StatusTooManyRequests, map[string]any{"ok": false, "client": client})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "client": client})
}

func (h *limitedHandler) allow(client string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if now.Sub(h.lastSweep) >= sweepInterval {
		h.evictIdle(now)
	}

	b, ok := h.clients[client]
	if !ok {
		if len(h.clients) >= h.maxClients {
			h.evictIdle(now)
		}
		if len(h.clients) >= h.maxClients {
			h.evictOldest()
		}
		b = &clientBucket{limiter: rate.NewLimiter(h.limit, h.burst)}
		h.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// evictIdle drops buckets that would be full again by now; recreating one
// gives the client the same answer.
func (h *limitedHandler) evictIdle(now time.Time) {
	h.lastSweep = now
	for key, b := range h.clients {
		if now.Sub(b.lastSeen) > h.idleTTL {
			delete(h.clients, key)
		}
	}
}

func (h *limitedHandler) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, b := range h.clients {
		if !found || b.lastSeen.Before(oldest) {
			oldestKey, oldest, found = key, b.lastSeen, true
		}
	}
	if found {
		delete(h.clients, oldestKey)
	}
}

func (h *limitedHandler) clientKey(r *http.Request) string {
	if h.trustXFF {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// refillTime is how long an untouched bucket takes to go from empty to full.
func refillTime(limit rate.Limit, burst int) time.Duration {
	if limit <= 0 || limit == rate.Inf {
		return 0
	}
	return time.Duration(float64(burst) / float64(limit) * float64(time.Second))
}

func retryAfterSeconds(limit rate.Limit) int {
	if limit <= 0 || limit == rate.Inf {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(limit))))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
