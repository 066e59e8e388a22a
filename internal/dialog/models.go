package dialog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMalformedEvent marks payloads rejected at the ingestion boundary.
var ErrMalformedEvent = errors.New("dialog: malformed event payload")

// requiredKeys must be present in every inbound payload. An empty string is a
// valid value; a missing key is not.
var requiredKeys = []string{"code", "playerName", "name", "text"}

// DialogueEvent is one captured chat line from the game client.
type DialogueEvent struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
	Name       string `json:"name"`
	Text       string `json:"text"`
	AudioText  string `json:"audioText"`
	Timestamp  int64  `json:"timestamp"`
}

// DecodeEvent parses an inbound payload, enforcing key presence before the
// usual decode so that {"text":""} and a payload without "text" are told apart.
func DecodeEvent(data []byte) (DialogueEvent, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return DialogueEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	for _, k := range requiredKeys {
		if _, ok := raw[k]; !ok {
			return DialogueEvent{}, fmt.Errorf("%w: missing key %q", ErrMalformedEvent, k)
		}
	}

	var ev DialogueEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return DialogueEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return ev, nil
}

// EnsureIdentity assigns a server-side id and timestamp to events the capture
// client sent without one. A zero timestamp always falls back to the current
// time so the record lands in today's day file.
func (e *DialogueEvent) EnsureIdentity(now time.Time) {
	ms := now.UnixMilli()
	if e.ID == "" {
		e.ID = "id" + strconv.FormatInt(ms, 10)
	}
	if e.Timestamp == 0 {
		e.Timestamp = ms
	}
}

// TranslationConfig records the provider and direction used for a record.
type TranslationConfig struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Provider string `json:"provider"`
}

// LogRecord is the persisted, translated form of a DialogueEvent.
type LogRecord struct {
	ID             string            `json:"id"`
	Code           string            `json:"code"`
	Player         string            `json:"player"`
	Name           string            `json:"name"`
	Text           string            `json:"text"`
	AudioText      string            `json:"audio_text"`
	TranslatedName string            `json:"translated_name"`
	TranslatedText string            `json:"translated_text"`
	Timestamp      int64             `json:"timestamp"`
	Datetime       string            `json:"datetime"`
	Translation    TranslationConfig `json:"translation"`
}

func formatDatetime(tsMillis int64) string {
	return time.UnixMilli(tsMillis).Format("2006-01-02 15:04:05")
}
