package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the env file read when --config is not given.
	DefaultConfigFile = "gitferry.env"

	// DefaultLookback is the history window captured when LOOKBACK is unset.
	DefaultLookback = "1 month ago"

	// DefaultRemoteName is the git remote the applier creates or updates
	// on every destination repository.
	DefaultRemoteName = "airgap"
)

// AuthMode selects how destination credentials are presented.
type AuthMode string

const (
	// AuthToken embeds user and token into an https remote URL.
	AuthToken AuthMode = "token"

	// AuthSSH relies on the ssh agent; the remote URL carries no credentials.
	AuthSSH AuthMode = "ssh"
)

// Config is the complete configuration for a run, constructed once at
// process start and passed into every component. The core never reads
// the environment after this point.
type Config struct {
	SourceDirs []string
	DestDirs   []string

	Lookback string
	Branches []string

	RepoList   string
	ImageList  string
	ArchiveDir string

	RemoteHost      string
	RemoteNamespace string
	RemoteUser      string
	RemoteToken     string
	AuthMode        AuthMode

	TextEncode     bool
	LFS            bool
	LFSFullHistory bool

	Registry          string
	RegistryNamespace string
}

// LoadConfig builds a Config from a flat key=value env file plus real
// environment variables. Environment variables win over file values. A
// missing file is an error only when the path was explicitly requested;
// the default file is optional.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("LOOKBACK", DefaultLookback)
	v.SetDefault("BRANCHES", "main,master")
	v.SetDefault("ARCHIVE_DIR", ".")
	v.SetDefault("REPO_LIST", "repositories.txt")
	v.SetDefault("IMAGE_LIST", "images.txt")
	v.SetDefault("AUTH_MODE", string(AuthToken))
	v.SetDefault("LFS", true)

	if err := v.ReadInConfig(); err != nil && explicit {
		return Config{}, fmt.Errorf("failed to read config file %q: %w\nCheck that the file exists and contains KEY=value lines", path, err)
	}

	config := Config{
		SourceDirs:        SplitList(v.GetString("SOURCE_DIRS")),
		DestDirs:          SplitList(v.GetString("DEST_DIRS")),
		Lookback:          v.GetString("LOOKBACK"),
		Branches:          SplitList(v.GetString("BRANCHES")),
		RepoList:          v.GetString("REPO_LIST"),
		ImageList:         v.GetString("IMAGE_LIST"),
		ArchiveDir:        v.GetString("ARCHIVE_DIR"),
		RemoteHost:        v.GetString("REMOTE_HOST"),
		RemoteNamespace:   v.GetString("REMOTE_NAMESPACE"),
		RemoteUser:        v.GetString("REMOTE_USER"),
		RemoteToken:       v.GetString("REMOTE_TOKEN"),
		AuthMode:          AuthMode(v.GetString("AUTH_MODE")),
		TextEncode:        v.GetBool("TEXT_ENCODE"),
		LFS:               v.GetBool("LFS"),
		LFSFullHistory:    v.GetBool("LFS_FULL_HISTORY"),
		Registry:          v.GetString("REGISTRY"),
		RegistryNamespace: v.GetString("REGISTRY_NAMESPACE"),
	}

	if config.AuthMode != AuthToken && config.AuthMode != AuthSSH {
		return Config{}, fmt.Errorf("invalid AUTH_MODE %q: must be %q or %q", config.AuthMode, AuthToken, AuthSSH)
	}

	return config, nil
}

// ValidateCollect checks the keys the collector requires. Missing
// required configuration aborts before any repository is processed.
func (c Config) ValidateCollect() error {
	if len(c.SourceDirs) == 0 {
		return fmt.Errorf("SOURCE_DIRS is required: set a comma-separated list of directories to search for repositories")
	}
	if _, err := ParseLookback(c.Lookback, time.Now()); err != nil {
		return err
	}
	return nil
}

// ValidateApply checks the keys the applier requires.
func (c Config) ValidateApply() error {
	if len(c.DestDirs) == 0 {
		return fmt.Errorf("DEST_DIRS is required: set a comma-separated list of directories to search for destination repositories")
	}
	if c.RemoteHost == "" {
		return fmt.Errorf("REMOTE_HOST is required: set the destination service hostname")
	}
	if c.AuthMode == AuthToken && (c.RemoteUser == "" || c.RemoteToken == "") {
		return fmt.Errorf("REMOTE_USER and REMOTE_TOKEN are required when AUTH_MODE=token")
	}
	return nil
}

// RemoteURL builds the push URL for one repository according to the
// configured authentication mode.
func (c Config) RemoteURL(repo string) string {
	path := repo
	if c.RemoteNamespace != "" {
		path = c.RemoteNamespace + "/" + repo
	}

	if c.AuthMode == AuthSSH {
		return fmt.Sprintf("git@%s:%s.git", c.RemoteHost, path)
	}

	return fmt.Sprintf("https://%s:%s@%s/%s.git", c.RemoteUser, c.RemoteToken, c.RemoteHost, path)
}

// SplitList splits a comma-separated configuration value, dropping empty
// entries and surrounding whitespace.
func SplitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
