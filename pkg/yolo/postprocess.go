package yolo

import (
	"sort"

	"CabbageAI/internal/entity"
)

// decodeOutput reads a YOLOv8 head laid out as [4+classes][anchors] and keeps
// the best class of every anchor scoring above confThreshold.
func decodeOutput(data []float32, numClasses, numAnchors int, confThreshold float32) []entity.Detection {
	detections := make([]entity.Detection, 0)

	for i := 0; i < numAnchors; i++ {
		bestClass := -1
		var bestScore float32
		for c := 0; c < numClasses; c++ {
			score := data[(boxAttributes+c)*numAnchors+i]
			if bestClass == -1 || score > bestScore {
				bestClass = c
				bestScore = score
			}
		}

		if bestClass == -1 || bestScore <= confThreshold {
			continue
		}

		cx := data[i]
		cy := data[numAnchors+i]
		w := data[2*numAnchors+i]
		h := data[3*numAnchors+i]

		detections = append(detections, entity.Detection{
			ClassID:    bestClass,
			Confidence: bestScore,
			Box: entity.BoundingBox{
				X1: cx - w/2,
				Y1: cy - h/2,
				X2: cx + w/2,
				Y2: cy + h/2,
			},
		})
	}

	return detections
}

// nonMaxSuppression runs greedy per-class NMS. The result is ordered by
// descending confidence and holds at most maxDetections boxes.
func nonMaxSuppression(detections []entity.Detection, iouThreshold float32, maxDetections int) []entity.Detection {
	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	kept := make([]entity.Detection, 0, len(detections))
	suppressed := make([]bool, len(detections))

	for i := range detections {
		if suppressed[i] {
			continue
		}

		kept = append(kept, detections[i])
		if maxDetections > 0 && len(kept) == maxDetections {
			break
		}

		for j := i + 1; j < len(detections); j++ {
			if suppressed[j] || detections[j].ClassID != detections[i].ClassID {
				continue
			}
			if iou(detections[i].Box, detections[j].Box) > iouThreshold {
				suppressed[j] = true
			}
		}
	}

	return kept
}

func iou(a, b entity.BoundingBox) float32 {
	inter := entity.BoundingBox{
		X1: max(a.X1, b.X1),
		Y1: max(a.Y1, b.Y1),
		X2: min(a.X2, b.X2),
		Y2: min(a.Y2, b.Y2),
	}.Area()

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func postprocess(output []float32, metadata Metadata, cfg Config, lb letterbox) entity.DetectionResult {
	candidates := decodeOutput(output, len(metadata.Classes), metadata.NumAnchors(), cfg.ConfidenceThreshold)
	detections := nonMaxSuppression(candidates, cfg.IoUThreshold, cfg.MaxDetections)

	for i := range detections {
		detections[i].Box = lb.restore(detections[i].Box)
	}

	return entity.DetectionResult{
		Width:      lb.width,
		Height:     lb.height,
		Detections: detections,
	}
}
