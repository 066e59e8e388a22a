package dialog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rikuzen/chatferry/internal/metrics"
	"github.com/rikuzen/chatferry/internal/translate"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *fakeProvider) Translate(_ context.Context, _, _ string, text string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, text)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return "T:" + text, nil
}

type fakeStore struct {
	mu        sync.Mutex
	merged    []LogRecord
	firstSeen bool
	err       error
}

func (s *fakeStore) Merge(rec LogRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merged = append(s.merged, rec)
	return s.firstSeen, s.err
}

func (s *fakeStore) records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogRecord(nil), s.merged...)
}

type fakeSink struct {
	mu        sync.Mutex
	records   []LogRecord
	firstSeen []bool
}

func (f *fakeSink) OnRecordFinalized(rec LogRecord, firstSeen bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	f.firstSeen = append(f.firstSeen, firstSeen)
}

func newTestService(provider *fakeProvider, store *fakeStore, cfg TranslationConfig, sinks ...RecordSink) *Service {
	registry := translate.NewRegistry()
	registry.Register("google", func(context.Context) (translate.Provider, error) {
		return provider, nil
	})
	registry.Register("zhconvert", func(context.Context) (translate.Provider, error) {
		return provider, nil
	})

	channels := map[string]string{"000A": "#FFFFFF", "0039": "#CCCCCC", "003D": "#ABD647"}
	return NewService(channels, NewMemoryWindow(5*time.Second), registry, cfg, store, sinks...)
}

func TestIngestRejectsMalformedPayload(t *testing.T) {
	store := &fakeStore{firstSeen: true}
	svc := newTestService(&fakeProvider{}, store, TranslationConfig{From: "ja", To: "en", Provider: "google"})

	err := svc.Ingest(context.Background(), []byte(`{"code":"000A"}`))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("want ErrMalformedEvent, got %v", err)
	}
	svc.Wait()
	if len(store.records()) != 0 {
		t.Fatal("malformed payload must not reach the store")
	}
}

func TestIngestDropsUnknownChannelAndEmptyText(t *testing.T) {
	store := &fakeStore{firstSeen: true}
	svc := newTestService(&fakeProvider{}, store, TranslationConfig{From: "ja", To: "en", Provider: "google"})

	payloads := [][]byte{
		[]byte(`{"code":"FFFF","playerName":"P","name":"N","text":"hello"}`),
		[]byte(`{"code":"000A","playerName":"P","name":"N","text":""}`),
	}
	for _, p := range payloads {
		if err := svc.Ingest(context.Background(), p); err != nil {
			t.Fatalf("drop should not be an error: %v", err)
		}
	}
	svc.Wait()
	if len(store.records()) != 0 {
		t.Fatal("dropped payloads must not reach the store")
	}
}

func TestIngestSuppressesDuplicateText(t *testing.T) {
	store := &fakeStore{firstSeen: true}
	svc := newTestService(&fakeProvider{}, store, TranslationConfig{From: "ja", To: "en", Provider: "google"})

	payload := []byte(`{"code":"000A","playerName":"P","name":"Krile","text":"hello"}`)
	if err := svc.Ingest(context.Background(), payload); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if err := svc.Ingest(context.Background(), payload); err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	svc.Wait()

	if got := len(store.records()); got != 1 {
		t.Fatalf("got %d merged records, want 1", got)
	}
}

func TestProcessTranslatesAndPersists(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeStore{firstSeen: true}
	sink := &fakeSink{}
	svc := newTestService(provider, store, TranslationConfig{From: "ja", To: "en", Provider: "google"}, sink)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	payload := []byte(`{"code":"000A","playerName":"P","name":"Krile","text":"hello"}`)
	if err := svc.Ingest(context.Background(), payload); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	svc.Wait()

	recs := store.records()
	if len(recs) != 1 {
		t.Fatalf("got %d merged records, want 1", len(recs))
	}
	rec := recs[0]
	if !strings.HasPrefix(rec.ID, "id") {
		t.Fatalf("got id %q, want id-prefixed", rec.ID)
	}
	if rec.TranslatedName != "T:Krile" || rec.TranslatedText != "T:hello" {
		t.Fatalf("got translations %q / %q", rec.TranslatedName, rec.TranslatedText)
	}
	if rec.Translation.Provider != "google" {
		t.Fatalf("got provider %q, want google", rec.Translation.Provider)
	}
	wantDatetime := time.UnixMilli(rec.Timestamp).Format("2006-01-02 15:04:05")
	if rec.Datetime != wantDatetime {
		t.Fatalf("got datetime %q, want %q", rec.Datetime, wantDatetime)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.records) != 1 || !sink.firstSeen[0] {
		t.Fatal("sink should see the record flagged first-seen")
	}
}

func TestProcessReshapesSystemMessageBeforeTranslation(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeStore{firstSeen: true}
	svc := newTestService(provider, store, TranslationConfig{From: "ja", To: "en", Provider: "google"})

	payload := []byte(`{"code":"0039","playerName":"P","name":"Alphinaud","text":"We must go."}`)
	if err := svc.Ingest(context.Background(), payload); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	svc.Wait()

	recs := store.records()
	if len(recs) != 1 {
		t.Fatalf("got %d merged records, want 1", len(recs))
	}
	if recs[0].Name != "" || recs[0].Text != "Alphinaud: We must go." {
		t.Fatalf("got name=%q text=%q after reshape", recs[0].Name, recs[0].Text)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.calls) != 1 || provider.calls[0] != "Alphinaud: We must go." {
		t.Fatalf("translation calls %v, want the folded text only", provider.calls)
	}
}

func TestProcessPersistsDespiteTranslationFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("backend down")}
	store := &fakeStore{firstSeen: true}
	svc := newTestService(provider, store, TranslationConfig{From: "ja", To: "en", Provider: "google"})

	payload := []byte(`{"code":"000A","playerName":"P","name":"Krile","text":"hello"}`)
	if err := svc.Ingest(context.Background(), payload); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	svc.Wait()

	recs := store.records()
	if len(recs) != 1 {
		t.Fatalf("got %d merged records, want 1", len(recs))
	}
	if recs[0].TranslatedName != "" || recs[0].TranslatedText != "" {
		t.Fatal("failed translation must persist as empty fields")
	}
	if recs[0].Text != "hello" {
		t.Fatal("original text must survive translation failure")
	}
}

func TestMergeFailureNotCountedAsMerged(t *testing.T) {
	store := &fakeStore{firstSeen: true, err: errors.New("disk full")}
	svc := newTestService(&fakeProvider{}, store, TranslationConfig{From: "ja", To: "en", Provider: "google"})

	mergedBefore := testutil.ToFloat64(metrics.RecordsMerged)
	firstSeenBefore := testutil.ToFloat64(metrics.FirstSeen)

	payload := []byte(`{"code":"000A","playerName":"P","name":"Krile","text":"hello"}`)
	if err := svc.Ingest(context.Background(), payload); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	svc.Wait()

	if got := len(store.records()); got != 1 {
		t.Fatalf("got %d merge attempts, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.RecordsMerged) - mergedBefore; got != 0 {
		t.Fatalf("merged counter moved by %v on a failed persist", got)
	}
	if got := testutil.ToFloat64(metrics.FirstSeen) - firstSeenBefore; got != 0 {
		t.Fatalf("first-seen counter moved by %v on a failed persist", got)
	}

	// the successful path still counts
	okStore := &fakeStore{firstSeen: true}
	okSvc := newTestService(&fakeProvider{}, okStore, TranslationConfig{From: "ja", To: "en", Provider: "google"})
	if err := okSvc.Ingest(context.Background(), payload); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	okSvc.Wait()
	if got := testutil.ToFloat64(metrics.RecordsMerged) - mergedBefore; got != 1 {
		t.Fatalf("merged counter moved by %v on a successful persist, want 1", got)
	}
}

func TestScriptVariantTargetRoutesToLocalConverter(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeStore{firstSeen: true}
	svc := newTestService(provider, store, TranslationConfig{From: "zh-Hans", To: "zh-Hant", Provider: "google"})

	payload := []byte(`{"code":"000A","playerName":"P","name":"","text":"hello"}`)
	if err := svc.Ingest(context.Background(), payload); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	svc.Wait()

	recs := store.records()
	if len(recs) != 1 {
		t.Fatalf("got %d merged records, want 1", len(recs))
	}
	if recs[0].Translation.Provider != "zhconvert" {
		t.Fatalf("got provider %q, want zhconvert", recs[0].Translation.Provider)
	}
}
