// Command evfdemo is a small runnable driver exercising the evf runtime:
// two active objects, a publish fan-out, a direct post, and a periodic
// timer, pumped by a plain for-loop calling RunOne until told to stop.
package main

import (
	"fmt"
	"time"

	"github.com/b9703/evf"
)

const (
	eventTypePing evf.EventType = iota
)

func main() {
	port := evf.NewDefaultPort()
	rt, err := evf.NewRuntime(port, evf.WithAssertionsEnabled(true))
	if err != nil {
		panic(err)
	}
	if err := rt.Init(); err != nil {
		panic(err)
	}

	firings := 0
	logger := evf.NewActiveObject("logger", 10, func(self *evf.ActiveObject, ev *evf.Event) evf.Status {
		if ev.Type == evf.EventTypeTimerFinished {
			payload := ev.Payload.(*evf.TimerFinishedEvent)
			firings++
			fmt.Printf("logger: timer %d finished (%d/3)\n", payload.TimerID, firings)
			if firings >= 3 {
				return evf.StatusShutdown
			}
		}
		return evf.StatusRunning
	}, []evf.EventType{eventTypePing})

	responder := evf.NewActiveObject("responder", 0, func(self *evf.ActiveObject, ev *evf.Event) evf.Status {
		fmt.Printf("responder: got ping %v\n", ev.Payload)
		return evf.StatusRunning
	}, []evf.EventType{eventTypePing})

	if err := rt.RegisterActiveObject(logger); err != nil {
		panic(err)
	}
	if err := rt.RegisterActiveObject(responder); err != nil {
		panic(err)
	}

	heartbeat := &evf.Timer{Owner: logger, ID: 1, Duration: 10, Periodic: true}
	if err := rt.TimerStart(heartbeat); err != nil {
		panic(err)
	}

	if ev, ok := rt.NewEvent(eventTypePing, "hello"); ok {
		if err := rt.Post(responder, ev); err != nil {
			fmt.Println("post failed:", err)
		}
	}

	if ev, ok := rt.NewEvent(eventTypePing, "broadcast"); ok {
		if _, err := rt.Publish(nil, ev); err != nil {
			fmt.Println("publish failed:", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		status, err := rt.RunOne()
		if err != nil {
			panic(err)
		}
		if status == evf.StatusShutdown {
			fmt.Println("runtime shut down")
			return
		}
		if !rt.HasWork() {
			time.Sleep(time.Millisecond)
		}
	}
}
