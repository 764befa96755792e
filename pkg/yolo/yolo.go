package yolo

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"CabbageAI/internal/entity"

	ort "github.com/yalue/onnxruntime_go"
)

type IDetector interface {
	Predict(ctx context.Context, img image.Image) ([]entity.DetectionResult, error)
	Names() []string
	Close()
}

type Config struct {
	ModelPath           string
	MetadataPath        string
	SharedLibraryPath   string
	ConfidenceThreshold float32
	IoUThreshold        float32
	MaxDetections       int
}

type detector struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	metadata     Metadata
	cfg          Config
}

// New loads the ONNX model once. The returned detector is safe for
// concurrent use; session runs are serialized because the input and output
// tensors are bound to the session.
func New(cfg Config) (IDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("failed to locate model: %w", err)
	}

	metadata, err := LoadMetadata(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &detector{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		metadata:     metadata,
		cfg:          cfg,
	}, nil
}

func (d *detector) Predict(ctx context.Context, img image.Image) ([]entity.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input, lb, err := preprocess(img, d.metadata.ImageSize())
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	copy(d.inputTensor.GetData(), input)

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	result := postprocess(d.outputTensor.GetData(), d.metadata, d.cfg, lb)

	return []entity.DetectionResult{result}, nil
}

func (d *detector) Names() []string {
	return d.metadata.Classes
}

func (d *detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
		d.inputTensor = nil
	}
	if d.outputTensor != nil {
		d.outputTensor.Destroy()
		d.outputTensor = nil
	}
	ort.DestroyEnvironment()
}
