package detectionService

import (
	"context"

	"CabbageAI/internal/api/detection"
	"CabbageAI/pkg/utils"
	"CabbageAI/pkg/yolo"
)

type IDetectionService interface {
	Predict(ctx context.Context, imageData []byte) (*detection.PredictionResponse, error)
}

type detectionService struct {
	detector yolo.IDetector
	utils    utils.IUtils
}

func NewDetectionService(
	detector yolo.IDetector,
	utils utils.IUtils,
) IDetectionService {
	return &detectionService{
		detector: detector,
		utils:    utils,
	}
}
