package config

import (
	"io"
	"os"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gopkg.in/yaml.v3"
)

// Read decodes a YAML or JSON scene on top of the defaults and validates it. Unknown keys are an
// error.
func Read(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "cannot parse scene")
	}

	scene := NewDefaultScene()
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           scene,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "cannot decode scene")
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return nil, errors.Errorf("unknown scene keys %v", md.Unused)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return scene, nil
}

// ReadFile reads the scene at path.
func ReadFile(path string) (*Scene, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	scene, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %q", path)
	}
	return scene, nil
}
