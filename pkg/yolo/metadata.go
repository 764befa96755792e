package yolo

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

const (
	defaultInputName  = "images"
	defaultOutputName = "output0"

	// boxAttributes is the cx, cy, w, h prefix of every anchor column.
	boxAttributes = 4
)

// Metadata describes the tensors of an exported YOLO model and carries its
// class-name table.
type Metadata struct {
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape" validate:"len=4,dive,gt=0"`
	OutputShape []int64  `json:"output_shape" validate:"len=3,dive,gt=0"`
	Classes     []string `json:"classes" validate:"min=1,dive,required"`
}

func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := jsoniter.Unmarshal(raw, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if metadata.InputName == "" {
		metadata.InputName = defaultInputName
	}
	if metadata.OutputName == "" {
		metadata.OutputName = defaultOutputName
	}

	if err := metadata.Validate(); err != nil {
		return Metadata{}, err
	}

	return metadata, nil
}

func (m Metadata) Validate() error {
	if err := validator.New().Struct(m); err != nil {
		return fmt.Errorf("invalid metadata: %w", err)
	}

	if m.InputShape[0] != 1 || m.InputShape[1] != 3 {
		return fmt.Errorf("invalid metadata: input shape %v must be [1, 3, S, S]", m.InputShape)
	}
	if m.InputShape[2] != m.InputShape[3] {
		return fmt.Errorf("invalid metadata: input shape %v must be square", m.InputShape)
	}
	if m.OutputShape[0] != 1 {
		return fmt.Errorf("invalid metadata: output batch size must be 1, got %d", m.OutputShape[0])
	}
	if want := int64(boxAttributes + len(m.Classes)); m.OutputShape[1] != want {
		return fmt.Errorf("invalid metadata: output shape %v does not match %d classes (want [1, %d, N])",
			m.OutputShape, len(m.Classes), want)
	}

	return nil
}

func (m Metadata) ImageSize() int {
	return int(m.InputShape[2])
}

func (m Metadata) NumAnchors() int {
	return int(m.OutputShape[2])
}
