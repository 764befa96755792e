package inject

import (
	"context"
	"image"

	"CabbageAI/internal/entity"
	"CabbageAI/pkg/yolo"
)

// Detector is a fake yolo.IDetector whose behaviour is injected per test.
type Detector struct {
	yolo.IDetector
	PredictFunc func(ctx context.Context, img image.Image) ([]entity.DetectionResult, error)
	NamesFunc   func() []string
	CloseFunc   func()
}

// Predict calls the injected Predict or the real variant.
func (d *Detector) Predict(ctx context.Context, img image.Image) ([]entity.DetectionResult, error) {
	if d.PredictFunc == nil {
		return d.IDetector.Predict(ctx, img)
	}
	return d.PredictFunc(ctx, img)
}

// Names calls the injected Names or the real variant.
func (d *Detector) Names() []string {
	if d.NamesFunc == nil {
		return d.IDetector.Names()
	}
	return d.NamesFunc()
}

// Close calls the injected Close or the real variant.
func (d *Detector) Close() {
	if d.CloseFunc == nil {
		if d.IDetector != nil {
			d.IDetector.Close()
		}
		return
	}
	d.CloseFunc()
}
