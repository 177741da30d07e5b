package simulation

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/vmihailenco/msgpack/v5"
)

// Paths exposes the raw simulated traces of MonteCarlo as a lazy sequence of
// (path index, values) where values has TradingDays+1 entries, the initial value first.
// Every range over the sequence starts from the engine seed again, so it replays the
// same draws as MonteCarlo for the same params. Paths are never retained.
func (e *Engine) Paths(params Params) (iter.Seq2[int, []float64], error) {
	days, err := params.validate()
	if err != nil {
		return nil, err
	}
	if err := e.checkPath(days); err != nil {
		return nil, err
	}
	p := e.newProjection(params.InitialValue, params.AnnualContribution, params.Years, params.Simulations, days)
	model := gaussianModel(params.ExpectedReturn, params.Volatility)

	return func(yield func(int, []float64) bool) {
		rng := e.newRNG()
		for s := 0; s < p.simulations; s++ {
			next := model(rng)
			path := make([]float64, p.days+1)
			path[0] = p.initial
			for t := 0; t < p.days; t++ {
				path[t+1] = p.step(path[t], next())
			}
			if !yield(s, path) {
				return
			}
		}
	}, nil
}

// PathFrame is one msgpack frame of a path stream.
type PathFrame struct {
	Index  int       `msgpack:"index"`
	Values []float64 `msgpack:"values"`
}

// WritePaths encodes each path as a PathFrame and returns the number written.
// It stops at the first encoding error.
func WritePaths(w io.Writer, paths iter.Seq2[int, []float64]) (int, error) {
	enc := msgpack.NewEncoder(w)
	written := 0
	for i, values := range paths {
		if err := enc.Encode(PathFrame{Index: i, Values: values}); err != nil {
			return written, fmt.Errorf("failed to encode path %d: %w", i, err)
		}
		written++
	}
	return written, nil
}

// ReadPaths decodes a stream written by WritePaths.
func ReadPaths(r io.Reader) ([]PathFrame, error) {
	dec := msgpack.NewDecoder(r)
	var frames []PathFrame
	for {
		var frame PathFrame
		err := dec.Decode(&frame)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("failed to decode path frame: %w", err)
		}
		frames = append(frames, frame)
	}
}
