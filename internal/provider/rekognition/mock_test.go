package rekognition

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// mockRekognitionAPI is a mock implementation of RekognitionAPI for testing
type mockRekognitionAPI struct {
	detectFacesFunc func(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

func (m *mockRekognitionAPI) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	if m.detectFacesFunc != nil {
		return m.detectFacesFunc(ctx, params, optFns...)
	}
	return &rekognition.DetectFacesOutput{}, nil
}
