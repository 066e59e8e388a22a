package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rikuzen/chatferry/internal/config"
	"github.com/rikuzen/chatferry/internal/sink"
)

const ttsEndpoint = "https://translate.google.com/translate_tts"

var httpClient = &http.Client{Timeout: 20 * time.Second}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()
	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required for the audio worker")
	}
	if err := os.MkdirAll(cfg.PlaylistDir, 0o755); err != nil {
		log.Fatalf("create playlist dir: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer ch.Close()

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("amqp qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("amqp consume: %v", err)
	}

	jobs := make(chan amqp.Delivery)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				handle(ctx, cfg.PlaylistDir, d)
			}
		}()
	}

	log.Printf("audio worker consuming %q with concurrency %d", cfg.RabbitQueue, concurrency)

dispatch:
	for {
		select {
		case <-ctx.Done():
			break dispatch
		case d, ok := <-msgs:
			if !ok {
				break dispatch
			}
			jobs <- d
		}
	}

	close(jobs)
	wg.Wait()
	log.Println("audio worker stopped")
}

func workerConcurrency() int {
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 2
}

// handle fetches speech audio for one job and drops it into the playlist
// directory. A failed job is rejected without requeue so the queue topology
// routes it to the dead-letter lane.
func handle(ctx context.Context, dir string, d amqp.Delivery) {
	var job sink.AudioJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Printf("worker: bad job payload: %v", err)
		d.Nack(false, false)
		return
	}

	if err := fetchSpeech(ctx, dir, job); err != nil {
		log.Printf("worker: job %s: %v", job.ID, err)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

func fetchSpeech(ctx context.Context, dir string, job sink.AudioJob) error {
	v := url.Values{}
	v.Set("ie", "UTF-8")
	v.Set("q", job.Text)
	v.Set("tl", job.Lang)
	v.Set("client", "tw-ob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ttsEndpoint+"?"+v.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch tts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch tts: status %d", resp.StatusCode)
	}

	out, err := os.Create(filepath.Join(dir, job.ID+".mp3"))
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write audio file: %w", err)
	}
	return nil
}
