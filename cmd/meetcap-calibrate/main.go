// Command meetcap-calibrate runs the VAD energy-threshold calibration
// wizard against the default microphone and writes the recommendation into
// a config file, adapted from the teacher's client calibration flow.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/meetcap/core/internal/calibrate"
	"github.com/meetcap/core/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file to update")
	backgroundSeconds := flag.Int("background-seconds", 5, "Seconds of background noise to record")
	speechSeconds := flag.Int("speech-seconds", 5, "Seconds of speech to record")
	flag.Parse()

	log := logger.New(false)
	wizard := calibrate.NewWizard(log)

	fmt.Println("Be quiet, then press Enter to record background noise...")
	fmt.Scanln()

	threshold, err := wizard.Run(*configPath,
		time.Duration(*backgroundSeconds)*time.Second,
		time.Duration(*speechSeconds)*time.Second)
	if err != nil {
		log.Fatal("calibration failed: %v", err)
	}

	fmt.Printf("Recommended vad.energy_threshold = %.4f written to %s\n", threshold, *configPath)
	os.Exit(0)
}
