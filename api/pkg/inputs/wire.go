package inputs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MsgType identifies a client→server inputs message.
type MsgType uint16

const (
	MsgKeyDown       MsgType = 1
	MsgKeyUp         MsgType = 2
	MsgKeyScancode   MsgType = 3
	MsgMouseMotion   MsgType = 4
	MsgMousePosition MsgType = 5
	MsgMousePress    MsgType = 6
	MsgMouseRelease  MsgType = 7
	MsgKeyModifiers  MsgType = 8
	MsgDisconnecting MsgType = 9
)

// headerSize is {type: uint16}{size: uint32}, little-endian.
const headerSize = 6

// ReadMessage reads one framed message from r: a 6-byte header followed by
// its payload. It returns ErrFatalMessage if the declared size exceeds
// maxSize, matching inputs_channel_alloc_msg_rcv_buf's behavior of
// rejecting (rather than truncating) an oversize message.
func ReadMessage(r io.Reader, maxSize int) (MsgType, []byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}

	msgType := MsgType(binary.LittleEndian.Uint16(hdr[0:2]))
	size := binary.LittleEndian.Uint32(hdr[2:6])
	if int(size) > maxSize {
		return msgType, nil, ErrFatalMessage
	}

	payload := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, err
		}
	}
	return msgType, payload, nil
}

// WriteMessage frames and writes one message to w, for use by tests and by
// clients of this protocol.
func WriteMessage(w io.Writer, msgType MsgType, payload []byte) error {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(msgType))
	binary.LittleEndian.PutUint32(hdr[2:6], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

func parseKeyCode(payload []byte) (uint32, error) {
	if len(payload) < 4 {
		return 0, fmt.Errorf("inputs: key code payload too short (%d bytes)", len(payload))
	}
	return binary.LittleEndian.Uint32(payload), nil
}

func parseMouseMotion(payload []byte) (dx, dy int16, buttons uint8, err error) {
	if len(payload) < 5 {
		return 0, 0, 0, fmt.Errorf("inputs: mouse motion payload too short (%d bytes)", len(payload))
	}
	dx = int16(binary.LittleEndian.Uint16(payload[0:2]))
	dy = int16(binary.LittleEndian.Uint16(payload[2:4]))
	buttons = payload[4]
	return dx, dy, buttons, nil
}

func parseMousePosition(payload []byte) (x, y int32, buttons uint8, displayID uint32, err error) {
	if len(payload) < 13 {
		return 0, 0, 0, 0, fmt.Errorf("inputs: mouse position payload too short (%d bytes)", len(payload))
	}
	x = int32(binary.LittleEndian.Uint32(payload[0:4]))
	y = int32(binary.LittleEndian.Uint32(payload[4:8]))
	buttons = payload[8]
	displayID = binary.LittleEndian.Uint32(payload[9:13])
	return x, y, buttons, displayID, nil
}

func parseMousePress(payload []byte) (button, buttons uint8, err error) {
	if len(payload) < 2 {
		return 0, 0, fmt.Errorf("inputs: mouse press payload too short (%d bytes)", len(payload))
	}
	return payload[0], payload[1], nil
}

func parseMouseRelease(payload []byte) (buttons uint8, err error) {
	if len(payload) < 1 {
		return 0, fmt.Errorf("inputs: mouse release payload too short (%d bytes)", len(payload))
	}
	return payload[0], nil
}

func parseKeyModifiers(payload []byte) (modifiers uint8, err error) {
	if len(payload) < 1 {
		return 0, fmt.Errorf("inputs: key modifiers payload too short (%d bytes)", len(payload))
	}
	return payload[0], nil
}
