package service

import (
	"context"

	"github.com/okian/growtho/internal/adapters/prepared"
	"github.com/okian/growtho/internal/domain/modelinput"
)

// LoadModelInput reads the prepared dataset in dir and flattens it for the
// inference engine.
func LoadModelInput(ctx context.Context, dir string) (modelinput.Input, error) {
	d, err := prepared.Read(ctx, dir)
	if err != nil {
		return modelinput.Input{}, err
	}
	return modelinput.Build(d)
}
