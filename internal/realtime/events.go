package realtime

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	eventJoinRoom       = "join_room"
	eventSendMessage    = "send_message"
	eventReceiveMessage = "receive_message"
	eventError          = "error"
)

// frame is the websocket message: {"event": "...", "data": ...}.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeFrame(event string, data []byte) ([]byte, error) {
	return json.Marshal(frame{Event: event, Data: data})
}

func encodeError(message string) []byte {
	data, _ := json.Marshal(map[string]string{"message": message})
	out, _ := encodeFrame(eventError, data)
	return out
}

// roomFromJoin accepts either a bare room id ("general") or {"roomId": "general"}.
func roomFromJoin(data json.RawMessage) (string, error) {
	var room string
	if err := json.Unmarshal(data, &room); err != nil {
		var obj struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return "", errors.New("join_room expects a room id")
		}
		room = obj.RoomID
	}
	room = strings.TrimSpace(room)
	if room == "" {
		return "", errors.New("join_room expects a room id")
	}
	return room, nil
}

// roomFromMessage reads only the routing field of a chat message. The payload
// itself is relayed untouched.
func roomFromMessage(data json.RawMessage) (string, error) {
	var msg struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", errors.New("send_message expects a JSON object")
	}
	if strings.TrimSpace(msg.RoomID) == "" {
		return "", errors.New("send_message requires a roomId")
	}
	return msg.RoomID, nil
}
