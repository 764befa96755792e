package detection

import (
	"fmt"
	"net/http"

	"CabbageAI/pkg/response"
)

var (
	ErrMissingFile = response.NewError(http.StatusUnprocessableEntity, fmt.Sprintf("field '%s' is required", UploadField))
)

// ErrPredictionFailed is the single failure category of the predict
// operation: decoding, inference and labeling all report 500 with the
// original message.
func ErrPredictionFailed(err error) error {
	return response.Wrap(http.StatusInternalServerError, err)
}

type UnknownClassError struct {
	Class int
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("class index %d is not in the model's class table", e.Class)
}
