package dialog

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/rikuzen/chatferry/internal/metrics"
	"github.com/rikuzen/chatferry/internal/translate"
)

const zhConvertProvider = "zhconvert"

// Store persists finalized records. Merge reports whether the record's id was
// seen for the first time.
type Store interface {
	Merge(rec LogRecord) (bool, error)
}

// RecordSink receives every finalized record after it has been persisted.
// Implementations must not block the pipeline.
type RecordSink interface {
	OnRecordFinalized(rec LogRecord, firstSeen bool)
}

// Service runs the ingestion pipeline: decode, gate, dedup, reshape,
// translate, persist, fan out.
type Service struct {
	channels map[string]string
	window   Window
	registry *translate.Registry
	cfg      TranslationConfig
	store    Store
	sinks    []RecordSink

	now      func() time.Time
	inflight sync.WaitGroup
}

func NewService(channels map[string]string, window Window, registry *translate.Registry, cfg TranslationConfig, store Store, sinks ...RecordSink) *Service {
	return &Service{
		channels: channels,
		window:   window,
		registry: registry,
		cfg:      cfg,
		store:    store,
		sinks:    sinks,
		now:      time.Now,
	}
}

// Ingest validates and gates one raw payload. Accepted events are processed
// asynchronously; the caller only learns whether the payload was admitted.
func (s *Service) Ingest(ctx context.Context, payload []byte) error {
	metrics.EventsReceived.Inc()

	ev, err := DecodeEvent(payload)
	if err != nil {
		metrics.EventsDropped.WithLabelValues("malformed").Inc()
		return err
	}
	if ev.Text == "" {
		metrics.EventsDropped.WithLabelValues("empty_text").Inc()
		return nil
	}
	if _, ok := s.channels[ev.Code]; !ok {
		metrics.EventsDropped.WithLabelValues("unknown_channel").Inc()
		return nil
	}
	if s.window.ShouldSuppress(ctx, ev.Text) {
		metrics.EventsDropped.WithLabelValues("duplicate").Inc()
		return nil
	}

	ev.EnsureIdentity(s.now())

	s.inflight.Add(1)
	go s.process(context.Background(), &ev)
	return nil
}

// Wait blocks until all admitted events have been processed. Used for
// shutdown drain and by tests.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) process(ctx context.Context, ev *DialogueEvent) {
	defer s.inflight.Done()

	ReshapeSystemMessage(ev)

	providerName := s.providerNameFor(s.cfg.To)
	translatedName, translatedText := s.translateEvent(ctx, providerName, ev)

	rec := LogRecord{
		ID:             ev.ID,
		Code:           ev.Code,
		Player:         ev.PlayerName,
		Name:           ev.Name,
		Text:           ev.Text,
		AudioText:      ev.AudioText,
		TranslatedName: translatedName,
		TranslatedText: translatedText,
		Timestamp:      ev.Timestamp,
		Datetime:       formatDatetime(ev.Timestamp),
		Translation: TranslationConfig{
			From:     s.cfg.From,
			To:       s.cfg.To,
			Provider: providerName,
		},
	}

	firstSeen, err := s.store.Merge(rec)
	if err != nil {
		log.Printf("dialog: merge record %s: %v", rec.ID, err)
	} else {
		metrics.RecordsMerged.Inc()
		if firstSeen {
			metrics.FirstSeen.Inc()
		}
	}

	for _, sink := range s.sinks {
		sink.OnRecordFinalized(rec, firstSeen)
	}
}

// providerNameFor routes script-variant targets to the local converter and
// everything else to the configured provider.
func (s *Service) providerNameFor(to string) string {
	if translate.TableForTarget(to) != "" {
		return zhConvertProvider
	}
	return s.cfg.Provider
}

// translateEvent translates name and text independently. A failed translation
// yields an empty string for that field; the record is persisted regardless.
func (s *Service) translateEvent(ctx context.Context, providerName string, ev *DialogueEvent) (name, text string) {
	provider, err := s.registry.Get(ctx, providerName)
	if err != nil {
		metrics.TranslateFailures.WithLabelValues(providerName).Inc()
		log.Printf("dialog: resolve provider %q: %v", providerName, err)
		return "", ""
	}

	if ev.Name != "" {
		name, err = provider.Translate(ctx, s.cfg.From, s.cfg.To, ev.Name)
		if err != nil {
			metrics.TranslateFailures.WithLabelValues(providerName).Inc()
			s.logTranslateError(providerName, err)
			name = ""
		}
	}

	text, err = provider.Translate(ctx, s.cfg.From, s.cfg.To, ev.Text)
	if err != nil {
		metrics.TranslateFailures.WithLabelValues(providerName).Inc()
		s.logTranslateError(providerName, err)
		text = ""
	}
	return name, text
}

func (s *Service) logTranslateError(providerName string, err error) {
	if errors.Is(err, translate.ErrMissingTable) {
		log.Printf("dialog: provider %q misconfigured: %v", providerName, err)
		return
	}
	log.Printf("dialog: translate via %q: %v", providerName, err)
}
