package sink

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rikuzen/chatferry/internal/dialog"
)

const twitchIRCURL = "wss://irc-ws.chat.twitch.tv:443/"

// TwitchRelay mirrors translated dialogue into a Twitch channel over the IRC
// websocket gateway. It is a best-effort sink: when the relay is stopped or a
// write fails, lines are simply not mirrored.
type TwitchRelay struct {
	username string
	token    string
	channel  string

	mu     sync.Mutex
	conn   *websocket.Conn
	active bool
}

func NewTwitchRelay(username, token, channel string) *TwitchRelay {
	return &TwitchRelay{
		username: username,
		token:    token,
		channel:  strings.ToLower(strings.TrimPrefix(channel, "#")),
	}
}

// Start connects, authenticates and joins the channel, then answers PINGs in
// the background until Stop or a read error.
func (t *TwitchRelay) Start(ctx context.Context) error {
	if t.username == "" || t.token == "" || t.channel == "" {
		return fmt.Errorf("sink: twitch relay not configured")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, twitchIRCURL, nil)
	if err != nil {
		return fmt.Errorf("sink: twitch dial: %w", err)
	}

	for _, line := range []string{
		"PASS oauth:" + t.token,
		"NICK " + t.username,
		"JOIN #" + t.channel,
	} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			conn.Close()
			return fmt.Errorf("sink: twitch handshake: %w", err)
		}
	}

	t.conn = conn
	t.active = true
	go t.readLoop(conn)
	return nil
}

// Stop closes the connection. Safe to call when not started.
func (t *TwitchRelay) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	t.active = false
	t.conn.Close()
	t.conn = nil
}

func (t *TwitchRelay) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *TwitchRelay) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			if t.conn == conn {
				t.active = false
				t.conn = nil
			}
			t.mu.Unlock()
			return
		}
		for _, line := range strings.Split(string(msg), "\r\n") {
			if strings.HasPrefix(line, "PING") {
				payload := strings.TrimPrefix(line, "PING")
				t.write("PONG" + payload)
			}
		}
	}
}

// Relay sends one chat line. Lines without a speaker are not mirrored.
func (t *TwitchRelay) Relay(speaker, text string) {
	if speaker == "" || text == "" {
		return
	}
	t.mu.Lock()
	channel := t.channel
	active := t.active
	t.mu.Unlock()
	if !active {
		return
	}
	t.write(privmsg(channel, speaker, text))
}

// write holds the lock across WriteMessage: Relay runs from per-event
// goroutines and readLoop answers PINGs, and the websocket connection
// allows only one concurrent writer.
func (t *TwitchRelay) write(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		log.Printf("sink: twitch write: %v", err)
	}
}

func (t *TwitchRelay) OnRecordFinalized(rec dialog.LogRecord, _ bool) {
	text := rec.TranslatedText
	if text == "" {
		text = rec.Text
	}
	t.Relay(rec.Name, text)
}

func privmsg(channel, speaker, text string) string {
	return fmt.Sprintf("PRIVMSG #%s :%s: %s", channel, speaker, text)
}
