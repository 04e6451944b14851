package catalog

// Config controls which catalog and delay pattern an analysis uses.
type Config struct {
	CatalogPath  string // YAML catalog file; empty selects Default()
	DelayPattern string // "first", "triple", a custom expression, or empty

	// Resolved by Validate
	catalog *Catalog
	delay   *DelayPattern
}

// DefaultConfig returns the configuration matching the built-in behavior.
func DefaultConfig() *Config {
	return &Config{}
}

// Validate loads the catalog file (if any) and compiles the delay pattern.
// A delay pattern named in the catalog file is used only when DelayPattern
// is empty; with neither set the first-value pattern applies.
func (c *Config) Validate() error {
	cat := Default()
	var filePattern *DelayPattern
	if c.CatalogPath != "" {
		loaded, p, err := Load(c.CatalogPath)
		if err != nil {
			return err
		}
		cat, filePattern = loaded, p
	}

	delay := filePattern
	if c.DelayPattern != "" || delay == nil {
		p, err := LookupDelayPattern(c.DelayPattern)
		if err != nil {
			return err
		}
		delay = p
	}

	c.catalog = cat
	c.delay = delay
	return nil
}

// Catalog returns the resolved catalog. Only valid after Validate.
func (c *Config) Catalog() *Catalog {
	return c.catalog
}

// Delay returns the resolved delay pattern. Only valid after Validate.
func (c *Config) Delay() *DelayPattern {
	return c.delay
}
