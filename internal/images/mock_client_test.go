package images_test

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/moby/moby/api/types/jsonstream"
	"github.com/moby/moby/client"
)

// mockDockerClient is a mock implementation of images.DockerClient for testing
type mockDockerClient struct {
	imageSaveFunc func(ctx context.Context, imageIDs []string, saveOpts ...client.ImageSaveOption) (client.ImageSaveResult, error)
	imageLoadFunc func(ctx context.Context, input io.Reader, loadOpts ...client.ImageLoadOption) (client.ImageLoadResult, error)
	imageTagFunc  func(ctx context.Context, options client.ImageTagOptions) (client.ImageTagResult, error)
	imagePushFunc func(ctx context.Context, image string, options client.ImagePushOptions) (client.ImagePushResponse, error)
	pingFunc      func(ctx context.Context, options client.PingOptions) (client.PingResult, error)
	closeFunc     func() error
}

func (m *mockDockerClient) ImageSave(ctx context.Context, imageIDs []string, saveOpts ...client.ImageSaveOption) (client.ImageSaveResult, error) {
	if m.imageSaveFunc != nil {
		return m.imageSaveFunc(ctx, imageIDs, saveOpts...)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDockerClient) ImageLoad(ctx context.Context, input io.Reader, loadOpts ...client.ImageLoadOption) (client.ImageLoadResult, error) {
	if m.imageLoadFunc != nil {
		return m.imageLoadFunc(ctx, input, loadOpts...)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDockerClient) ImageTag(ctx context.Context, options client.ImageTagOptions) (client.ImageTagResult, error) {
	if m.imageTagFunc != nil {
		return m.imageTagFunc(ctx, options)
	}
	return client.ImageTagResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ImagePush(ctx context.Context, image string, options client.ImagePushOptions) (client.ImagePushResponse, error) {
	if m.imagePushFunc != nil {
		return m.imagePushFunc(ctx, image, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDockerClient) Ping(ctx context.Context, options client.PingOptions) (client.PingResult, error) {
	if m.pingFunc != nil {
		return m.pingFunc(ctx, options)
	}
	return client.PingResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

// fakePushResponse wraps a reader so tests can hand a push progress
// stream to the code under test.
type fakePushResponse struct {
	io.ReadCloser
}

func (r fakePushResponse) JSONMessages(ctx context.Context) iter.Seq2[jsonstream.Message, error] {
	return func(yield func(jsonstream.Message, error) bool) {}
}

func (r fakePushResponse) Wait(ctx context.Context) error {
	_, err := io.Copy(io.Discard, r)
	return err
}
