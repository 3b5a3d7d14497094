package main

import (
	"flag"
	"log"
	"time"

	"endfind/estimator"
	"endfind/relay"
)

func main() {
	udpAddr := flag.String("udp", "127.0.0.1:5555", "UDP destination (predictions only)")
	tcpAddr := flag.String("tcp", "127.0.0.1:6666", "TCP destination (everything)")
	header := flag.String("hdr", "endfind", "Header string")
	flag.Parse()

	sender := relay.NewSender(*header)
	if err := sender.AddTarget("udp", *udpAddr, relay.KindPrediction); err != nil {
		log.Fatalf("Failed to add UDP target: %v", err)
	}
	if err := sender.AddTarget("tcp", *tcpAddr, relay.KindAll); err != nil {
		log.Fatalf("Failed to add TCP target: %v", err)
	}
	sender.Start()
	defer sender.Stop()

	log.Println("Sender started. Press Ctrl+C to exit.")

	for i := 1; ; i++ {
		sender.Publish(relay.Result{
			Count:      i,
			Status:     "ok",
			OK:         true,
			Prediction: estimator.Prediction{X: float64(100 * i), Z: float64(-50 * i), Confidence: 0.5},
		})
		sender.Publish(relay.Result{Count: i, Status: "waiting"})
		time.Sleep(1 * time.Second)
	}
}
