package main

import (
	"flag"
	"log"

	malaria "github.com/jgsuresh/emodlib"
)

func main() {
	loggerType := flag.String("logger", "none", "recorder type (none|csv|sqlite)")
	ticks := flag.Int("ticks", 365, "number of daily ticks to simulate")
	dt := flag.Float64("dt", 1, "tick length in days")
	flag.Parse()

	configPath := flag.Arg(0)
	if configPath == "" {
		log.Fatal("usage: intrahost [flags] <config.toml>")
	}

	raw, err := malaria.LoadParams(configPath)
	if err != nil {
		log.Fatal(err)
	}
	params, err := malaria.NewParams(raw)
	if err != nil {
		log.Fatal(err)
	}

	host := malaria.NewIntrahost()
	if err := host.Configure(params); err != nil {
		log.Fatal(err)
	}
	host.Challenge()

	var recorder malaria.Recorder
	switch *loggerType {
	case "none":
		// no-op
	case "csv":
		recorder = malaria.NewCSVRecorder(configPath)
	case "sqlite":
		recorder = malaria.NewSQLiteRecorder(configPath)
	default:
		log.Fatalf("%s is not a valid recorder type (none|csv|sqlite)", *loggerType)
	}
	if recorder != nil {
		if err := recorder.Init(); err != nil {
			log.Fatal(err)
		}
		defer recorder.Close()
	}

	for tick := 1; tick <= *ticks; tick++ {
		if err := host.Update(*dt); err != nil {
			log.Printf("host terminated at tick %d: %s", tick, err)
			break
		}
		if recorder != nil {
			if err := recorder.Record(tick, host); err != nil {
				log.Fatal(err)
			}
		}
	}
}
