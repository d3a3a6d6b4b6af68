package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"
)

func main() {
	ips := []string{"8.8.8.8", "1.1.1.1", "203.0.113.7", "91.198.174.192"}
	agents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		"Mozilla/5.0 (X11; Linux x86_64)",
		"curl/8.5.0",
	}

	client := &http.Client{Timeout: 5 * time.Second}

	log.Println("Starting to send test visits...")

	for i := 0; i < 100; i++ {
		req, err := http.NewRequest(http.MethodGet, "http://localhost:8080/visit", nil)
		if err != nil {
			log.Fatal(err)
		}
		req.Header.Set("X-Forwarded-For", ips[rand.Intn(len(ips))])
		req.Header.Set("User-Agent", agents[rand.Intn(len(agents))])

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("Error sending visit: %v", err)
		} else {
			resp.Body.Close()
			log.Printf("Sent visit: %s (%d)", req.Header.Get("X-Forwarded-For"), resp.StatusCode)
		}

		time.Sleep(100 * time.Millisecond)
	}

	log.Println("Finished sending test visits")
}
