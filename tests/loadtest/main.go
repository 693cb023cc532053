package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var (
	baseURL      = flag.String("url", "http://127.0.0.1:8090", "dashboard base URL")
	numWorkers   = flag.Int("workers", 50, "concurrent HTTP workers")
	numStreams   = flag.Int("streams", 100, "concurrent websocket clients")
	testDuration = flag.Duration("duration", 10*time.Second, "duration of each phase")
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	flag.Parse()

	fmt.Println("=== Reployer Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Streams: %d | Duration: %s\n\n", *baseURL, *numWorkers, *numStreams, *testDuration)

	fmt.Print("Waiting for server... ")
	if !waitReady() {
		fmt.Println("FAILED: server not responding")
		return
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Status reads (GET /status) ---")
	runPhase(*testDuration, func(_ *rand.Rand) result {
		return doGet("/status")
	})

	fmt.Println("\n--- Phase 2: Dashboard mix (status, history, schedule, health) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doGet("/status")
		case r < 0.75:
			return doGet("/history")
		case r < 0.90:
			return doGet("/schedule")
		case r < 0.99:
			return doGet("/health")
		default:
			return doRefresh()
		}
	})

	fmt.Println("\n--- Phase 3: Stream fan-out (GET /ws) ---")
	runStreams(*numStreams, *testDuration)
}

func waitReady() bool {
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			var body struct {
				Status string `json:"status"`
			}
			decodeErr := json.NewDecoder(resp.Body).Decode(&body)
			resp.Body.Close()
			if decodeErr == nil && body.Status == "ok" {
				return true
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

// runStreams holds n websocket clients open and counts the snapshot frames
// each one receives.
func runStreams(n int, duration time.Duration) {
	wsURL := "ws" + strings.TrimPrefix(*baseURL, "http") + "/ws"

	var frames, failed atomic.Int64
	var wg sync.WaitGroup
	deadline := time.Now().Add(duration)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if resp != nil && resp.Body != nil {
				resp.Body.Close()
			}
			if err != nil {
				failed.Add(1)
				return
			}
			defer conn.Close()

			_ = conn.SetReadDeadline(deadline)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
				frames.Add(1)
			}
		}()
	}
	wg.Wait()

	fmt.Printf("  Clients: %d | Failed dials: %d | Frames: %d (%.1f per client)\n",
		n, failed.Load(), frames.Load(), float64(frames.Load())/float64(max(n-int(failed.Load()), 1)))
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doGet(path string) result {
	name := "GET " + path
	start := time.Now()
	resp, err := httpClient.Get(*baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{name, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{name, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func doRefresh() result {
	start := time.Now()
	resp, err := httpClient.Post(*baseURL+"/refresh", "application/json", nil)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /refresh", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /refresh", resp.StatusCode, lat, resp.StatusCode != http.StatusAccepted}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
