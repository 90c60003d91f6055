package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/toggl-absence/cmd"
)

func init() {
	log.SetOutput(os.Stderr)
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

func main() {
	cmd.Execute()
}
