package types

import "time"

// NetworkConfig holds shared network settings for stages that talk to the
// wiki or download assets.
type NetworkConfig struct {
	// Timeout bounds a single page navigation or image request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Period groups legacy pacing knobs.
	Period PeriodConfig `json:"period" yaml:"period" mapstructure:"period"`
}

// PeriodConfig carries the legacy pacing section of the crawler config.
type PeriodConfig struct {
	// Activation is the delay between consecutive image downloads, in
	// milliseconds.
	Activation int `json:"activation" yaml:"activation" mapstructure:"activation"`
}

// TargetConfig selects which categories get a full detail pass.
type TargetConfig struct {
	// Category lists category display names exactly as they appear on the
	// item index page. A name with no matching section aborts the run.
	Category []string `json:"category" yaml:"category" mapstructure:"category"`
}

// ImageOutputConfig controls the image download pass.
type ImageOutputConfig struct {
	// Active toggles image downloading after the catalog export.
	Active bool `json:"active" yaml:"active" mapstructure:"active"`

	// Directory is the image directory under the output directory. The key
	// is misspelled in existing config files; kept for compatibility.
	Directory string `json:"directroy" yaml:"directroy" mapstructure:"directroy"`
}

// OutputConfig controls where the exported catalog and images land.
type OutputConfig struct {
	// Directory is the base output directory.
	Directory string `json:"directory" yaml:"directory" mapstructure:"directory"`

	// Filename is the catalog JSON filename within Directory.
	Filename string `json:"filename" yaml:"filename" mapstructure:"filename"`

	Image ImageOutputConfig `json:"image" yaml:"image" mapstructure:"image"`
}

// BrowserConfig holds headless-browser settings.
type BrowserConfig struct {
	// Headless runs the browser without a visible window.
	Headless bool `json:"headless" yaml:"headless" mapstructure:"headless"`
}

// CatalogConfig holds settings for the SQLite catalog index.
type CatalogConfig struct {
	// Directory is the base directory for the catalog database (contains
	// catalog.db).
	Directory string `json:"directory" yaml:"directory" mapstructure:"directory"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// CrawlConfig groups all stage configurations for a crawl run.
type CrawlConfig struct {
	// URL is the address of the item index page.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	Network NetworkConfig `json:"network" yaml:"network" mapstructure:"network"`
	Target  TargetConfig  `json:"target" yaml:"target" mapstructure:"target"`
	Output  OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`
	Browser BrowserConfig `json:"browser" yaml:"browser" mapstructure:"browser"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}

// WithDefaults fills unset fields with working defaults.
func (c CrawlConfig) WithDefaults() CrawlConfig {
	if c.Network.Timeout == 0 {
		c.Network.Timeout = 60 * time.Second
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "output"
	}
	if c.Output.Filename == "" {
		c.Output.Filename = "items.json"
	}
	if c.Output.Image.Directory == "" {
		c.Output.Image.Directory = "images"
	}
	if c.Catalog.Directory == "" {
		c.Catalog.Directory = "catalog"
	}
	if c.Catalog.MaxResults <= 0 {
		c.Catalog.MaxResults = 20
	}
	return c
}
