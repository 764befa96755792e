package detectionService

import (
	"context"
	"errors"
	"image"
	"net/http"
	"testing"

	"CabbageAI/internal/api/detection"
	"CabbageAI/internal/entity"
	"CabbageAI/internal/testutils"
	"CabbageAI/internal/testutils/inject"
	"CabbageAI/pkg/response"
	"CabbageAI/pkg/utils"

	"go.viam.com/test"
)

var classNames = []string{"black_rot", "downy_mildew", "healthy"}

func newService(predict func(context.Context, image.Image) ([]entity.DetectionResult, error)) IDetectionService {
	return NewDetectionService(&inject.Detector{
		PredictFunc: predict,
		NamesFunc:   func() []string { return classNames },
	}, utils.New())
}

func TestPredictPreservesModelOrder(t *testing.T) {
	var seen image.Rectangle
	svc := newService(func(_ context.Context, img image.Image) ([]entity.DetectionResult, error) {
		seen = img.Bounds()
		return []entity.DetectionResult{{
			Width:  12,
			Height: 6,
			Detections: []entity.Detection{
				{ClassID: 0, Confidence: 0.91},
				{ClassID: 2, Confidence: 0.64},
				{ClassID: 1, Confidence: 0.33},
			},
		}}, nil
	})

	resp, err := svc.Predict(context.Background(), testutils.PNG(t, 12, 6))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seen.Dx(), test.ShouldEqual, 12)
	test.That(t, seen.Dy(), test.ShouldEqual, 6)
	test.That(t, resp.Predictions, test.ShouldResemble, []detection.Prediction{
		{Class: 0, Label: "black_rot", Confidence: 0.91},
		{Class: 2, Label: "healthy", Confidence: 0.64},
		{Class: 1, Label: "downy_mildew", Confidence: 0.33},
	})
}

func TestPredictFlattensAllResults(t *testing.T) {
	svc := newService(func(context.Context, image.Image) ([]entity.DetectionResult, error) {
		return []entity.DetectionResult{
			{Detections: []entity.Detection{{ClassID: 1, Confidence: 0.5}}},
			{Detections: nil},
			{Detections: []entity.Detection{{ClassID: 2, Confidence: 0.7}, {ClassID: 2, Confidence: 0.4}}},
		}, nil
	})

	resp, err := svc.Predict(context.Background(), testutils.PNG(t, 4, 4))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp.Predictions, test.ShouldHaveLength, 3)
	test.That(t, resp.Predictions[0].Label, test.ShouldEqual, "downy_mildew")
	test.That(t, resp.Predictions[2].Confidence, test.ShouldEqual, float32(0.4))
}

func TestPredictNoDetections(t *testing.T) {
	svc := newService(func(context.Context, image.Image) ([]entity.DetectionResult, error) {
		return []entity.DetectionResult{{Width: 4, Height: 4}}, nil
	})

	resp, err := svc.Predict(context.Background(), testutils.PNG(t, 4, 4))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp.Predictions, test.ShouldNotBeNil)
	test.That(t, resp.Predictions, test.ShouldBeEmpty)
}

func TestPredictIsRepeatable(t *testing.T) {
	svc := newService(func(context.Context, image.Image) ([]entity.DetectionResult, error) {
		return []entity.DetectionResult{{Detections: []entity.Detection{{ClassID: 2, Confidence: 0.8}}}}, nil
	})
	upload := testutils.PNG(t, 5, 5)

	first, err := svc.Predict(context.Background(), upload)
	test.That(t, err, test.ShouldBeNil)
	second, err := svc.Predict(context.Background(), upload)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second, test.ShouldResemble, first)
}

func TestPredictFailures(t *testing.T) {
	called := false
	ok := func(context.Context, image.Image) ([]entity.DetectionResult, error) {
		called = true
		return nil, nil
	}

	t.Run("undecodable upload", func(t *testing.T) {
		called = false
		_, err := newService(ok).Predict(context.Background(), []byte("plain text, not an image"))
		test.That(t, called, test.ShouldBeFalse)
		assertPredictionFailed(t, err, "image: unknown format (content type: text/plain; charset=utf-8)")
		test.That(t, errors.Is(err, image.ErrFormat), test.ShouldBeTrue)
	})

	t.Run("oversized image", func(t *testing.T) {
		called = false
		_, err := newService(ok).Predict(context.Background(), testutils.PNGHeader(30000, 30000))
		test.That(t, called, test.ShouldBeFalse)
		assertPredictionFailed(t, err, "image size (900000000 pixels) exceeds limit of 178956970 pixels (content type: image/png)")

		var tooLarge *utils.ImageTooLargeError
		test.That(t, errors.As(err, &tooLarge), test.ShouldBeTrue)
	})

	t.Run("empty upload", func(t *testing.T) {
		_, err := newService(ok).Predict(context.Background(), nil)
		assertPredictionFailed(t, err, utils.ErrEmptyImage.Error())
	})

	t.Run("inference error", func(t *testing.T) {
		svc := newService(func(context.Context, image.Image) ([]entity.DetectionResult, error) {
			return nil, errors.New("inference failed: session closed")
		})
		_, err := svc.Predict(context.Background(), testutils.PNG(t, 2, 2))
		assertPredictionFailed(t, err, "inference failed: session closed")
	})

	t.Run("class outside table", func(t *testing.T) {
		svc := newService(func(context.Context, image.Image) ([]entity.DetectionResult, error) {
			return []entity.DetectionResult{{Detections: []entity.Detection{{ClassID: 7, Confidence: 0.9}}}}, nil
		})
		_, err := svc.Predict(context.Background(), testutils.PNG(t, 2, 2))
		assertPredictionFailed(t, err, "class index 7 is not in the model's class table")

		var classErr *detection.UnknownClassError
		test.That(t, errors.As(err, &classErr), test.ShouldBeTrue)
		test.That(t, classErr.Class, test.ShouldEqual, 7)
	})
}

func assertPredictionFailed(t *testing.T, err error, msg string) {
	t.Helper()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, msg)

	var respErr *response.Error
	test.That(t, errors.As(err, &respErr), test.ShouldBeTrue)
	test.That(t, respErr.Code, test.ShouldEqual, http.StatusInternalServerError)
}
