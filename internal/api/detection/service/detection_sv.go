package detectionService

import (
	"context"
	"errors"

	"CabbageAI/internal/api/detection"
	"CabbageAI/internal/entity"
	"CabbageAI/pkg/log"
	"CabbageAI/pkg/utils"
)

func (s *detectionService) Predict(ctx context.Context, imageData []byte) (*detection.PredictionResponse, error) {
	logger := log.WithRequestID(ctx)

	img, format, err := s.utils.DecodeImage(imageData)
	if err != nil {
		fields := log.Fields{
			"size":  len(imageData),
			"error": err.Error(),
		}
		var decodeErr *utils.DecodeError
		if errors.As(err, &decodeErr) {
			fields["mime_type"] = decodeErr.ContentType
		}
		logger.WithFields(fields).Warn("Failed to decode uploaded image")
		return nil, detection.ErrPredictionFailed(err)
	}

	logger.WithFields(log.Fields{
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("Running inference")

	results, err := s.detector.Predict(ctx, img)
	if err != nil {
		return nil, detection.ErrPredictionFailed(err)
	}

	predictions, err := flatten(results, s.detector.Names())
	if err != nil {
		return nil, detection.ErrPredictionFailed(err)
	}

	logger.WithField("predictions", len(predictions)).Debug("Inference finished")

	return &detection.PredictionResponse{
		Predictions: predictions,
	}, nil
}

// flatten collects the boxes of every result, in emission order, into one list.
func flatten(results []entity.DetectionResult, names []string) ([]detection.Prediction, error) {
	predictions := make([]detection.Prediction, 0)

	for _, result := range results {
		for _, d := range result.Detections {
			if d.ClassID < 0 || d.ClassID >= len(names) {
				return nil, &detection.UnknownClassError{Class: d.ClassID}
			}

			predictions = append(predictions, detection.Prediction{
				Class:      d.ClassID,
				Label:      names[d.ClassID],
				Confidence: d.Confidence,
			})
		}
	}

	return predictions, nil
}
