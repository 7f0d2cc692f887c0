package params

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a network configuration document from path.
//
// Supported file types: .json, .hcl, .yaml, .yml
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseConfig(data, filepath.Ext(path))
}

// ParseConfig decodes a document whose format is named by ext.
func ParseConfig(data []byte, ext string) (*Config, error) {
	var unmarshalFunc func([]byte, interface{}) error

	switch strings.ToLower(ext) {
	case ".hcl":
		unmarshalFunc = hcl.Unmarshal
	case ".json":
		unmarshalFunc = json.Unmarshal
	case ".yaml", ".yml":
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("config suffix %q is neither json, hcl nor yaml", ext)
	}

	config := &Config{}
	if err := unmarshalFunc(data, config); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}

	if config.DefaultNetwork == "" && len(config.Networks) == 1 {
		config.DefaultNetwork = config.Names()[0]
	}

	return config, nil
}
