package datafile

import (
	"context"
	"log/slog"
	"strings"
)

// Source yields render data.
type Source interface {
	Get(ctx context.Context) (interface{}, error)
}

// Static is data loaded once.
type Static struct {
	Data interface{}
}

// Get returns s.Data.
func (s Static) Get(context.Context) (interface{}, error) {
	return s.Data, nil
}

// Open returns a Source for location: an http(s) URL becomes a Remote,
// anything else is loaded with Load right away. An empty location yields
// no data.
func Open(location string, logger *slog.Logger) (Source, error) {
	if location == "" {
		return Static{}, nil
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewRemote(location, RemoteOptions{}, logger), nil
	}

	data, err := Load(location)
	if err != nil {
		return nil, err
	}
	return Static{Data: data}, nil
}
