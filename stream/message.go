// Package stream broadcasts engine frames to websocket clients and applies their controls
package stream

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/firehose/render"
	"github.com/lixenwraith/firehose/vmath"
)

// Server to client message types
const (
	TypeSnapshot = "snapshot"
	TypeFrame    = "frame"
)

// Frame is one engine frame, or the full element set when Type is snapshot
type Frame struct {
	Type   string         `json:"type"`
	Seq    uint64         `json:"seq"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Draw   []render.State `json:"draw,omitempty"`
	Remove []uint64       `json:"remove,omitempty"`
}

// ClientMessage is a control message from a client
type ClientMessage struct {
	Type  string  `json:"type"`
	ID    uint64  `json:"id,omitempty"`
	Mode  string  `json:"mode,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// Controls reports whether msg changes engine state beyond a click
func (m ClientMessage) Controls() bool {
	return m.Type != "click"
}

// Controller is the engine surface reachable from clients
type Controller interface {
	Click(id uint64) bool
	SetMode(name string) bool
	SetSpeed(speed float64)
	SetSpawnRate(ms int)
	SetMaxWords(n int)
	Start()
	Stop()
	Clear()
}

// Sentinel errors
var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrUnknownMode    = errors.New("unknown mode")
	ErrInvalidValue   = errors.New("invalid value")
)

// Dispatch applies msg to ctrl
func Dispatch(ctrl Controller, msg ClientMessage) error {
	switch msg.Type {
	case "click":
		ctrl.Click(msg.ID)
	case "mode":
		if !ctrl.SetMode(msg.Mode) {
			return fmt.Errorf("%w: %q", ErrUnknownMode, msg.Mode)
		}
	case "speed":
		ctrl.SetSpeed(msg.Value)
	case "spawn", "capacity":
		if math.IsNaN(msg.Value) {
			return fmt.Errorf("%w: %s NaN", ErrInvalidValue, msg.Type)
		}
		// Out of range float to int conversion is implementation defined
		n := int(vmath.Clamp(msg.Value, math.MinInt32, math.MaxInt32))
		if msg.Type == "spawn" {
			ctrl.SetSpawnRate(n)
		} else {
			ctrl.SetMaxWords(n)
		}
	case "start":
		ctrl.Start()
	case "stop":
		ctrl.Stop()
	case "clear":
		ctrl.Clear()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}
