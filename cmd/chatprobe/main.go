// Package main provides a stress testing tool for the chat WebSocket server.
// Pairs of accounts connect to each other's direct-chat channel, exchange
// frames, and report throughput and echo latency at the end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	FramesSent           int64
	EchoesReceived       int64
	Errors               int64
}

var metrics Metrics

type account struct {
	Username string
	Email    string
	Password string
}

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	pairs := flag.Int("pairs", 10, "Number of chat pairs")
	interval := flag.Duration("interval", 2*time.Second, "Send interval per client")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	flag.Parse()

	log.Printf("Starting chat probe against %s with %d pairs for %v", *host, *pairs, *duration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *pairs; i++ {
		a := account{
			Username: fmt.Sprintf("probe_a_%d", i),
			Email:    fmt.Sprintf("probe_a_%d@example.com", i),
			Password: "probe-password-1",
		}
		b := account{
			Username: fmt.Sprintf("probe_b_%d", i),
			Email:    fmt.Sprintf("probe_b_%d@example.com", i),
			Password: "probe-password-1",
		}

		tokenA, err := ensureAccount(*host, a)
		if err != nil {
			log.Printf("pair %d: account %s unavailable: %v", i, a.Username, err)
			continue
		}
		tokenB, err := ensureAccount(*host, b)
		if err != nil {
			log.Printf("pair %d: account %s unavailable: %v", i, b.Username, err)
			continue
		}

		wg.Add(2)
		go runClient(*host, tokenA, a.Username, b.Username, *interval, stopChan, &wg)
		go runClient(*host, tokenB, b.Username, a.Username, *interval, stopChan, &wg)

		// Stagger connections so the server-side rate limiter for
		// register/login does not trip.
		time.Sleep(100 * time.Millisecond)
	}

	select {
	case <-time.After(*duration):
		log.Println("Test duration reached")
	case <-interrupt:
		log.Println("Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for clients to disconnect...")
	wg.Wait()

	printMetrics()
}

// ensureAccount registers the account (ignoring conflicts for reruns) and
// returns an access token.
func ensureAccount(host string, acc account) (string, error) {
	registerURL := fmt.Sprintf("http://%s/api/users/register", host)
	payload, _ := json.Marshal(map[string]string{
		"username": acc.Username,
		"email":    acc.Email,
		"password": acc.Password,
	})
	resp, err := http.Post(registerURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return "", fmt.Errorf("register failed with status %d", resp.StatusCode)
	}

	return login(host, acc.Email, acc.Password)
}

func login(host, email, password string) (string, error) {
	loginURL := fmt.Sprintf("http://%s/api/users/login", host)
	payload, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(loginURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Access, nil
}

func runClient(host, token, username, peer string, interval time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{
		Scheme:   "ws",
		Host:     host,
		Path:     "/api/ws/chat/" + peer,
		RawQuery: "token=" + token,
	}

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			var frame struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(raw, &frame) == nil && frame.Type == "chat_message_echo" {
				atomic.AddInt64(&metrics.EchoesReceived, 1)
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-stopChan:
			_ = c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			seq++
			// Stay inside the 50-character frame limit.
			frame, _ := json.Marshal(map[string]string{
				"message":  fmt.Sprintf("probe %d", seq),
				"username": username,
			})
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				return
			}
			atomic.AddInt64(&metrics.FramesSent, 1)
		}
	}
}

func printMetrics() {
	log.Println("Results:")
	log.Printf("  connections attempted: %d", metrics.ConnectionsAttempted)
	log.Printf("  connections succeeded: %d", metrics.ConnectionsSuccess)
	log.Printf("  connections failed:    %d", metrics.ConnectionsFailed)
	log.Printf("  frames sent:           %d", metrics.FramesSent)
	log.Printf("  echoes received:       %d", metrics.EchoesReceived)
	log.Printf("  errors:                %d", metrics.Errors)
}
