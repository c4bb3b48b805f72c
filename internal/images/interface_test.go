package images_test

import (
	"github.com/moby/moby/client"
	"github.com/ryanmoran/gitferry/internal/images"
)

// Compile-time check that *client.Client implements DockerClient interface
var _ images.DockerClient = (*client.Client)(nil)
