package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
	"github.com/spaghettifunk/tinyfx/engine/systems"
)

const (
	defaultUniformBufferSize   uint32 = 4 << 20
	defaultTransientBufferSize uint32 = 4 << 20
	defaultContextVersion             = 43
)

/** @brief The renderer section of config.toml. */
type RendererConfig struct {
	/** @brief major*10+minor: 43 is GL 4.3, 30 with gles is GLES 3.0. */
	ContextVersion      int    `toml:"context_version"`
	GLES                bool   `toml:"gles"`
	UniformBufferSize   uint32 `toml:"uniform_buffer_size"`
	TransientBufferSize uint32 `toml:"transient_buffer_size"`
	MaxAnisotropy       bool   `toml:"max_anisotropy"`
	VSync               bool   `toml:"vsync"`
	/** @brief Request a debug context and log device errors. */
	Debug bool `toml:"debug"`
	/** @brief Directory watched for shader changes. Empty disables hot reload. */
	ShaderDir string `toml:"shader_dir"`
	/** @brief Quiet period before a changed shader is reloaded. */
	ReloadDebounceMS int `toml:"reload_debounce_ms"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

/** @brief The whole of config.toml. */
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Renderer    RendererConfig    `toml:"renderer"`
	Log         LogConfig         `toml:"log"`
}

// DefaultConfig is used for every key config.toml leaves out.
func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:        "tinyfx",
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
		},
		Renderer: RendererConfig{
			ContextVersion:      defaultContextVersion,
			UniformBufferSize:   defaultUniformBufferSize,
			TransientBufferSize: defaultTransientBufferSize,
			MaxAnisotropy:       true,
			VSync:               true,
			ReloadDebounceMS:    100,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads a TOML file over DefaultConfig and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("func LoadConfig - %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		var derr *toml.DecodeError
		var serr *toml.StrictMissingError
		switch {
		case errors.As(err, &derr):
			core.LogError("config:\n%s", derr.String())
		case errors.As(err, &serr):
			core.LogError("config:\n%s", serr.String())
		}
		err = fmt.Errorf("func ParseConfig - %s: %w", err, core.ErrConfigInvalid)
		core.LogError(err.Error())
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the renderer cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Application.StartWidth == 0 || c.Application.StartHeight == 0 {
		errs = append(errs, fmt.Errorf("application size %dx%d must be positive", c.Application.StartWidth, c.Application.StartHeight))
	}
	if c.Application.StartWidth > 0xFFFF || c.Application.StartHeight > 0xFFFF {
		errs = append(errs, fmt.Errorf("application size %dx%d exceeds 65535", c.Application.StartWidth, c.Application.StartHeight))
	}
	if c.Renderer.UniformBufferSize == 0 {
		errs = append(errs, errors.New("renderer.uniform_buffer_size must be positive"))
	}
	if c.Renderer.TransientBufferSize == 0 {
		errs = append(errs, errors.New("renderer.transient_buffer_size must be positive"))
	}
	if !metadata.SupportedContext(c.Renderer.ContextVersion, c.Renderer.GLES) {
		errs = append(errs, fmt.Errorf("renderer.context_version %d (gles=%t): %w", c.Renderer.ContextVersion, c.Renderer.GLES, core.ErrUnsupportedContext))
	}
	if c.Renderer.ReloadDebounceMS < 0 {
		errs = append(errs, errors.New("renderer.reload_debounce_ms must not be negative"))
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	err := fmt.Errorf("func Validate - %w: %w", core.ErrConfigInvalid, errors.Join(errs...))
	core.LogError(err.Error())
	return err
}

// RenderContextConfig is the renderer part handed to systems.NewRenderContext.
func (c *Config) RenderContextConfig() *systems.RenderContextConfig {
	return &systems.RenderContextConfig{
		ContextVersion:      c.Renderer.ContextVersion,
		GLES:                c.Renderer.GLES,
		UniformBufferSize:   c.Renderer.UniformBufferSize,
		TransientBufferSize: c.Renderer.TransientBufferSize,
	}
}

// ResetFlags derives the flags passed to RenderContext.Reset.
func (c *Config) ResetFlags() metadata.ResetFlags {
	flags := metadata.ResetNone
	if c.Renderer.MaxAnisotropy {
		flags |= metadata.ResetMaxAnisotropy
	}
	return flags
}

func (c *Config) ReloadDebounce() time.Duration {
	return time.Duration(c.Renderer.ReloadDebounceMS) * time.Millisecond
}
