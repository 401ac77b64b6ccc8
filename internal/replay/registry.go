package replay

import (
	"fmt"
	"log"
)

// Options configures NewReplay.
type Options struct {
	OSCHost   string
	OSCPort   int
	SendFixed bool
	Logger    *log.Logger
}

// NewReplay creates a replay collaborator based on the specified variant
func NewReplay(variant string, opts Options) (Replay, error) {
	switch variant {
	case "nop", "":
		return Nop{}, nil
	case "log":
		return NewRecorder(opts.Logger), nil
	case "osc":
		if opts.OSCHost == "" || opts.OSCPort <= 0 {
			return nil, fmt.Errorf("osc replay needs host and port, got %q:%d", opts.OSCHost, opts.OSCPort)
		}
		return NewOSCBridge(opts.OSCHost, opts.OSCPort, opts.SendFixed, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown replay variant: %s", variant)
	}
}
