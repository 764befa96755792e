package entity

// BoundingBox is expressed in pixels of the source image.
type BoundingBox struct {
	X1 float32 `json:"x1"`
	Y1 float32 `json:"y1"`
	X2 float32 `json:"x2"`
	Y2 float32 `json:"y2"`
}

func (b BoundingBox) Area() float32 {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

type Detection struct {
	ClassID    int         `json:"class_id"`
	Confidence float32     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

// DetectionResult holds everything the model found in one input image.
type DetectionResult struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Detections []Detection `json:"detections"`
}
