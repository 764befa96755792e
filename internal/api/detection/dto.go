package detection

type Prediction struct {
	Class      int     `json:"class"`
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
}

type PredictionResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const UploadField = "file"
