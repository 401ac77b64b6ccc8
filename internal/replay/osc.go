package replay

import (
	"log"

	"github.com/hypebeast/go-osc/osc"
)

// OSC addresses the bridge sends to.
const (
	AddressTime  = "/replay/time"
	AddressPlay  = "/replay/play"
	AddressStop  = "/replay/stop"
	AddressFixed = "/replay/fixed"
)

// Sender is the part of an OSC client the bridge uses.
type Sender interface {
	Send(packet osc.Packet) error
}

// OSCBridge forwards timeline events to an external replay recorder over
// OSC. Send failures are logged and dropped: the replay is a collaborator
// and must never stall the frame.
type OSCBridge struct {
	client     Sender
	logger     *log.Logger
	sendFixed  bool
	lastFailed bool
}

// NewOSCBridge connects to host:port. sendFixed also forwards the
// fixed-rate tick.
func NewOSCBridge(host string, port int, sendFixed bool, logger *log.Logger) *OSCBridge {
	return NewOSCBridgeWithSender(osc.NewClient(host, port), sendFixed, logger)
}

// NewOSCBridgeWithSender uses an existing sender.
func NewOSCBridgeWithSender(client Sender, sendFixed bool, logger *log.Logger) *OSCBridge {
	return &OSCBridge{client: client, logger: logger, sendFixed: sendFixed}
}

func (b *OSCBridge) Update() {}

func (b *OSCBridge) FixedUpdate() {
	if b.sendFixed {
		b.send(osc.NewMessage(AddressFixed))
	}
}

func (b *OSCBridge) TimeUpdate(time float64, scrubbing bool) {
	b.send(osc.NewMessage(AddressTime, float32(time), scrubbing))
}

func (b *OSCBridge) PlayPause(play bool) {
	b.send(osc.NewMessage(AddressPlay, play))
}

func (b *OSCBridge) Stop(time float64) {
	b.send(osc.NewMessage(AddressStop, float32(time)))
}

func (b *OSCBridge) send(msg *osc.Message) {
	err := b.client.Send(msg)
	if err != nil {
		// log once per failure streak, the bridge is called every frame
		if !b.lastFailed && b.logger != nil {
			b.logger.Printf("[replay] osc send %s failed: %v", msg.Address, err)
		}
		b.lastFailed = true
		return
	}
	b.lastFailed = false
}
