package main

import (
	"log"
	"time"
)

// loopSafely runs f every interval and restarts the loop after a panic.
func loopSafely(name string, interval time.Duration, f func()) {
	defer func() {
		if v := recover(); v != nil {
			log.Printf("Panic in %v: %v, restarting", name, v)
			time.Sleep(time.Second)
			go loopSafely(name, interval, f)
		}
	}()

	for {
		f()

		time.Sleep(interval)
	}
}
