package formlearn

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// WebSocketProtocol is the wire shape a scored frame was sent with.
type WebSocketProtocol string

const (
	ProtocolSocketIO WebSocketProtocol = "socket.io"
	ProtocolSockJS   WebSocketProtocol = "sockjs"
	ProtocolRaw      WebSocketProtocol = "raw"
)

// ScoredFrame is a candidate submission frame with its computed score.
type ScoredFrame struct {
	Frame    CapturedFrame
	Protocol WebSocketProtocol
	Score    int
}

var submitEventWords = []string{"submit", "create", "update", "send"}

// ScoreFrames scores every sent frame by (a) payload keys matching field
// names (including camel/snake variants) and (b) event names containing
// a mutation-ish word, per spec §4.7's WebSocket detection rule, and
// returns the highest-scoring frame.
func ScoreFrames(frames []CapturedFrame, fieldNames []string) (ScoredFrame, bool) {
	var best ScoredFrame
	found := false
	for _, f := range frames {
		if f.Direction != "sent" {
			continue
		}
		scored := ScoredFrame{Frame: f, Protocol: inferProtocol(f)}
		scored.Score = scorePayloadFields(f.Payload, fieldNames) + scoreEventName(f)
		if !found || scored.Score > best.Score {
			best = scored
			found = true
		}
	}
	return best, found
}

func scorePayloadFields(payload []byte, fieldNames []string) int {
	score := 0
	for _, name := range fieldNames {
		for _, candidate := range []string{name, toCamelCase(name), toSnakeCase(name)} {
			if gjson.GetBytes(payload, candidate).Exists() {
				score++
				break
			}
		}
	}
	return score
}

func scoreEventName(f CapturedFrame) int {
	name := f.EventName
	if name == "" {
		name = gjson.GetBytes(f.Payload, "event").String()
	}
	name = strings.ToLower(name)
	for _, word := range submitEventWords {
		if strings.Contains(name, word) {
			return 2
		}
	}
	return 0
}

func inferProtocol(f CapturedFrame) WebSocketProtocol {
	url := strings.ToLower(f.URL)
	switch {
	case strings.Contains(url, "socket.io"):
		return ProtocolSocketIO
	case strings.Contains(url, "sockjs"):
		return ProtocolSockJS
	}
	if gjson.GetBytes(f.Payload, "event").Exists() {
		return ProtocolSocketIO
	}
	payloadType := gjson.GetBytes(f.Payload, "type")
	if payloadType.Exists() && payloadType.String() == "42" {
		return ProtocolSocketIO
	}
	if strings.HasPrefix(strings.TrimSpace(string(f.Payload)), "42") {
		return ProtocolSocketIO
	}
	return ProtocolRaw
}

// SubmitViaWebSocket dials the pattern's submission URL and sends the
// mapped payload as a single text frame, used for patterns whose
// Transport is TransportWebSocket.
func SubmitViaWebSocket(ctx context.Context, url string, payload []byte, timeout time.Duration) error {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.WriteMessage(websocket.TextMessage, payload)
}
