package images

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cliconfig "github.com/docker/cli/cli/config"
	"github.com/moby/moby/api/types/registry"
	"github.com/moby/moby/client"
	"github.com/moby/term"
	"github.com/ryanmoran/gitferry/internal"
)

// Ferry moves images between the Docker daemon and tarball files.
type Ferry struct {
	client  DockerClient
	writer  internal.Writer
	verbose bool
}

// NewFerry creates a Ferry that wraps the provided Docker client
// interface. Progress output is printed only when stdout is a terminal.
func NewFerry(dockerClient DockerClient, writer internal.Writer) Ferry {
	return Ferry{
		client:  dockerClient,
		writer:  writer,
		verbose: term.IsTerminal(os.Stdout.Fd()),
	}
}

// NewDefaultFerry creates a Ferry with a real Docker client from the
// environment.
func NewDefaultFerry(writer internal.Writer) (Ferry, error) {
	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return Ferry{}, fmt.Errorf("failed to create docker client: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}

	return NewFerry(cli, writer), nil
}

// Close closes the underlying Docker client connection.
func (f Ferry) Close() {
	f.client.Close()
}

// Save writes the image to a tarball under destDir and returns its path.
func (f Ferry) Save(ctx context.Context, ref Ref, destDir string) (string, error) {
	reader, err := f.client.ImageSave(ctx, []string{ref.String()})
	if err != nil {
		return "", fmt.Errorf("failed to save image %q: %w\nCheck that the image exists locally (try 'docker images')", ref, err)
	}
	defer reader.Close()

	path := filepath.Join(destDir, ref.TarName())
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image tarball %q: %w\nCheck disk space and permissions", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return "", fmt.Errorf("failed to write image tarball %q: %w", path, err)
	}

	return path, file.Close()
}

// Load imports an image tarball into the Docker daemon.
func (f Ferry) Load(ctx context.Context, tarPath string) error {
	file, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("failed to open image tarball %q: %w", tarPath, err)
	}
	defer file.Close()

	progress, err := f.client.ImageLoad(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to load image tarball %q: %w\nCheck Docker daemon logs for details", tarPath, err)
	}
	defer progress.Close()

	return f.drainProgress(ctx, progress)
}

// Retag tags a loaded image for the destination registry and returns the
// target reference.
func (f Ferry) Retag(ctx context.Context, ref Ref, registryHost, namespace string) (string, error) {
	target := ref.Target(registryHost, namespace)

	_, err := f.client.ImageTag(ctx, client.ImageTagOptions{
		Source: ref.String(),
		Target: target,
	})
	if err != nil {
		return "", fmt.Errorf("failed to tag %q as %q: %w", ref, target, err)
	}

	return target, nil
}

// Push pushes a target reference using the given encoded registry auth.
func (f Ferry) Push(ctx context.Context, target, auth string) error {
	response, err := f.client.ImagePush(ctx, target, client.ImagePushOptions{
		RegistryAuth: auth,
	})
	if err != nil {
		return fmt.Errorf("failed to push image %q: %w\nCheck registry credentials and connectivity", target, err)
	}
	defer response.Close()

	return f.drainProgress(ctx, response)
}

// drainProgress consumes a JSON progress stream from the daemon,
// surfacing embedded errors and printing status lines when verbose.
func (f Ferry) drainProgress(ctx context.Context, body io.Reader) error {
	decoder := json.NewDecoder(body)
	for decoder.More() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var output struct {
			Stream      string `json:"stream"`
			Status      string `json:"status"`
			ErrorDetail struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"errorDetail"`
			Error string `json:"error"`
		}
		if err := decoder.Decode(&output); err != nil {
			return fmt.Errorf("failed to decode docker progress output: %w\nDocker may have returned malformed JSON", err)
		}

		if output.Error != "" {
			return fmt.Errorf("docker operation failed: %s", output.Error)
		}
		if output.ErrorDetail.Message != "" {
			return fmt.Errorf("docker operation failed: %s", output.ErrorDetail.Message)
		}

		if f.verbose {
			if output.Stream != "" {
				f.writer.Print(output.Stream)
			}
			if output.Status != "" {
				f.writer.Println(output.Status)
			}
		}
	}

	return nil
}

// RegistryAuth builds the encoded auth payload for a push. Explicit
// credentials from configuration win; otherwise the local docker config
// file (docker login state) is consulted. The daemon expects the auth
// config as base64url-encoded JSON in the X-Registry-Auth header.
func RegistryAuth(registryHost, user, token string) (string, error) {
	auth := registry.AuthConfig{
		Username:      user,
		Password:      token,
		ServerAddress: registryHost,
	}

	if user == "" || token == "" {
		configFile := cliconfig.LoadDefaultConfigFile(io.Discard)
		stored, err := configFile.GetAuthConfig(registryHost)
		if err == nil {
			auth.Username = stored.Username
			auth.Password = stored.Password
			auth.IdentityToken = stored.IdentityToken
			auth.RegistryToken = stored.RegistryToken
		}
	}

	payload, err := json.Marshal(auth)
	if err != nil {
		return "", fmt.Errorf("failed to encode registry auth: %w", err)
	}

	return base64.URLEncoding.EncodeToString(payload), nil
}
