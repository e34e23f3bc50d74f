package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/ayusman/forma/internal/engine"
	"github.com/ayusman/forma/internal/pose"
	"github.com/ayusman/forma/internal/server"
	"github.com/ayusman/forma/internal/session"
)

func main() {
	framesPath := flag.String("frames", "", "JSONL landmark recording to replay (required)")
	configPath := flag.String("config", "", "optional JSON tuning file overriding engine defaults")
	listenAddr := flag.String("listen", "", "optional address for the diagnostic server, e.g. :8080")
	flag.Parse()

	if *framesPath == "" {
		flag.Usage()
		log.Fatal("missing required -frames")
	}

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = engine.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	sess, err := session.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	fmt.Printf("Forma - Curl Form Analysis (session %s)\n", sess.ID)

	if *listenAddr != "" {
		srv := server.New(server.Config{Session: sess})
		go func() {
			fmt.Printf("Diagnostic server on %s\n", *listenAddr)
			if err := srv.ListenAndServe(*listenAddr); err != nil {
				log.Printf("Diagnostic server stopped: %v", err)
			}
		}()
	}

	src, err := pose.NewReplaySource(*framesPath)
	if err != nil {
		log.Fatalf("Failed to open recording: %v", err)
	}
	defer src.Close()

	if err := replay(src, sess); err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	sess.End()
	snap := sess.Snapshot()
	fmt.Printf("Done: %d repetition(s)\n", snap.RepCount)
}

// replay drives every frame of the source through the session, reporting
// each confirmed repetition as it lands.
func replay(src pose.Source, sess *session.Session) error {
	lastCount := 0
	for {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		sess.Process(frame.Landmarks, frame.Timestamp)

		snap := sess.Snapshot()
		if snap.RepCount > lastCount {
			lastCount = snap.RepCount
			printRep(snap)
		}
	}
}

func printRep(snap session.Snapshot) {
	rep := snap.LastRep
	if rep == nil {
		return
	}
	fmt.Printf("Rep %d: score %.0f", snap.RepCount, rep.Score)
	for _, msg := range rep.Messages {
		fmt.Printf(" | %s", msg)
	}
	fmt.Println()
}
