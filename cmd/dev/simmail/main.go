package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"outingpass/pkg/mailer"
)

// simmail stands in for the transactional-email function during local
// development. It checks the bearer key and body signature the same way the
// real function does and prints every message instead of sending it.
func main() {
	var (
		addr   = flag.String("addr", ":8090", "listen address")
		apiKey = flag.String("api-key", os.Getenv("MAILER_API_KEY"), "expected bearer key (optional)")
		secret = flag.String("secret", os.Getenv("MAILER_SIGNING_SECRET"), "expected signing secret (optional)")
		fail   = flag.Bool("fail", false, "answer every request with an error payload")
	)
	flag.Parse()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if *apiKey != "" && r.Header.Get("Authorization") != "Bearer "+*apiKey {
			writeErr(w, http.StatusUnauthorized, "bad api key")
			return
		}
		if *secret != "" && !mailer.Verify(body, r.Header.Get(mailer.SignatureHeader), *secret) {
			writeErr(w, http.StatusUnauthorized, "bad signature")
			return
		}

		var msg mailer.Message
		if err := json.Unmarshal(body, &msg); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if *fail {
			writeErr(w, http.StatusBadGateway, "simulated provider outage")
			return
		}

		fmt.Printf("--- to=%s\nsubject: %s\n%s\n", msg.To, msg.Subject, msg.HTML)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	log.Printf("simmail listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
