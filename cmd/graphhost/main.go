package main

import (
	"flag"
	"log/slog"
	"math"
	"time"

	"github.com/wpn114/audiograph/cmd/graphhost/config"
	"github.com/wpn114/audiograph/graph"
	"github.com/wpn114/audiograph/graph/observer"
	"github.com/wpn114/audiograph/internal/utils"
)

// sineOsc is the simplest possible Renderer: a free-running oscillator.
type sineOsc struct {
	freq, rate float64
	frame      int
}

func (s *sineOsc) Render(inputs, outputs graph.Pool, nframes int) error {
	out := outputs[0].Audio
	for f := 0; f < nframes; f++ {
		t := float64(s.frame+f) / s.rate
		out[0][f] = math.Sin(2 * math.Pi * s.freq * t)
	}
	s.frame += nframes
	return nil
}

type passthrough struct{}

func (passthrough) Render(inputs, outputs graph.Pool, nframes int) error {
	in, out := inputs[0].Audio, outputs[0].Audio
	for ch := range out {
		copy(out[ch], in[ch])
	}
	return nil
}

func main() {
	configFilePath := flag.String("configFilePath", "", "Path to an optional config file.")
	flag.Parse()

	if err := config.LoadConfig(*configFilePath); err != nil {
		panic(err)
	}
	logFilePointer, err := utils.ConfigureDefaultLogger(config.LogLevel(), config.LogFile(), slog.HandlerOptions{})
	if err != nil {
		panic(err)
	}
	if logFilePointer != nil {
		defer logFilePointer.Close()
	}

	props := graph.Properties{SampleRate: config.SampleRate(), Vector: config.Vector()}
	g := graph.New(props,
		graph.WithMutationQueueSize(config.MutationQueueSize()),
		graph.WithObserverQueueSize(config.ObserverQueueSize()),
	)

	osc := g.NewNode("osc", &sineOsc{freq: 440, rate: props.SampleRate})
	oscOut := osc.AddOutput("out", graph.Audio, 1, true)

	sink := g.NewNode("sink", passthrough{})
	sinkIn := sink.AddInput("in", graph.Audio, 1, true)
	sink.AddOutput("out", graph.Audio, 1, true)

	if _, err := g.Connect(oscOut.ID(), sinkIn.ID(), graph.Routing{}); err != nil {
		panic(err)
	}
	if err := g.Build(); err != nil {
		panic(err)
	}

	slog.Info("graph ready", "samplerate", props.SampleRate, "vector", props.Vector)

	period := time.Duration(float64(props.Vector) / props.SampleRate * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	go drainObserver(g)

	for i := 0; i < 100; i++ {
		<-ticker.C
		if err := g.Run(sink, props.Vector); err != nil {
			slog.Error("run failed", "err", err)
		}
	}
}

func drainObserver(g *graph.Graph) {
	for range time.Tick(50 * time.Millisecond) {
		for _, e := range g.Observer().Drain() {
			if e.Kind == observer.RenderError {
				slog.Warn("render error", "node", e.NodeName, "err", e.Err)
			}
		}
	}
}
