package migrate_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"

	"github.com/moby/moby/api/types/jsonstream"
	"github.com/moby/moby/client"
)

// fakeDockerClient simulates the daemon for image runs: saves stream
// fixed tarball bytes, loads and pushes emit a benign progress stream,
// and per-image errors can be injected by reference.
type fakeDockerClient struct {
	saveErrs map[string]error
	pushErrs map[string]error

	saved    []string
	loaded   int
	tagged   map[string]string
	pushed   []string
	pushAuth []string
}

func newFakeDockerClient() *fakeDockerClient {
	return &fakeDockerClient{
		saveErrs: make(map[string]error),
		pushErrs: make(map[string]error),
		tagged:   make(map[string]string),
	}
}

func progressBody() io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(`{"status":"done"}`)))
}

// fakePushResponse wraps the progress stream in the push response shape.
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

func (f *fakeDockerClient) ImageSave(ctx context.Context, imageIDs []string, saveOpts ...client.ImageSaveOption) (client.ImageSaveResult, error) {
	for _, id := range imageIDs {
		if err := f.saveErrs[id]; err != nil {
			return nil, err
		}
	}
	f.saved = append(f.saved, imageIDs...)
	return io.NopCloser(bytes.NewReader([]byte("tar-bytes"))), nil
}

func (f *fakeDockerClient) ImageLoad(ctx context.Context, input io.Reader, loadOpts ...client.ImageLoadOption) (client.ImageLoadResult, error) {
	if _, err := io.Copy(io.Discard, input); err != nil {
		return nil, err
	}
	f.loaded++
	return progressBody(), nil
}

func (f *fakeDockerClient) ImageTag(ctx context.Context, options client.ImageTagOptions) (client.ImageTagResult, error) {
	f.tagged[options.Source] = options.Target
	return client.ImageTagResult{}, nil
}

func (f *fakeDockerClient) ImagePush(ctx context.Context, image string, options client.ImagePushOptions) (client.ImagePushResponse, error) {
	if err := f.pushErrs[image]; err != nil {
		return nil, err
	}
	f.pushed = append(f.pushed, image)
	f.pushAuth = append(f.pushAuth, options.RegistryAuth)
	return fakePushResponse{ReadCloser: progressBody()}, nil
}

func (f *fakeDockerClient) Ping(ctx context.Context, options client.PingOptions) (client.PingResult, error) {
	return client.PingResult{}, errors.New("not implemented")
}

func (f *fakeDockerClient) Close() error {
	return nil
}
