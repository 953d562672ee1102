// Debug OSC listener: prints every received message and per-second
// packet statistics. Point the dispatcher at this to inspect the wire.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

type printDispatcher struct {
	verbose bool
	packets atomic.Int64
}

func (d *printDispatcher) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		d.packets.Add(1)
		if d.verbose {
			fmt.Println(formatMessage(p))
		}
	case *osc.Bundle:
		for _, msg := range p.Messages {
			d.Dispatch(msg)
		}
	}
}

func formatMessage(msg *osc.Message) string {
	parts := make([]string, 0, len(msg.Arguments)+1)
	parts = append(parts, msg.Address)
	for _, arg := range msg.Arguments {
		parts = append(parts, fmt.Sprintf("%v", arg))
	}
	return strings.Join(parts, " ")
}

func main() {
	var (
		port    = flag.Int("port", 7000, "UDP port to listen on")
		verbose = flag.Bool("verbose", false, "Print every message, not just statistics")
	)
	flag.Parse()

	dispatcher := &printDispatcher{verbose: *verbose}
	server := &osc.Server{
		Addr:       fmt.Sprintf(":%d", *port),
		Dispatcher: dispatcher,
	}

	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			packets := dispatcher.packets.Swap(0)
			if packets > 0 {
				fmt.Printf("received %d messages/sec\n", packets)
			}
		}
	}()

	fmt.Printf("OSC listener started on port %d\n", *port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
