// Package types holds plugin metadata shared by the host and the plugins.
package types

// PluginMeta describes a plugin to the host. ID and Name are required; the rest is shown by help listings.
type PluginMeta struct {
	PluginID   string
	PluginName string
	PluginType string
	Enabled    bool
	Author     string
	Version    string
	Desc       string
}

// NewPluginEngine returns plugin metadata. pluginType is a free-form category such as "skill".
func NewPluginEngine(id, name, pluginType string, enabled bool) *PluginMeta {
	return &PluginMeta{
		PluginID:   id,
		PluginName: name,
		PluginType: pluginType,
		Enabled:    enabled,
	}
}

func (m *PluginMeta) WithAuthor(author string) *PluginMeta {
	m.Author = author
	return m
}

func (m *PluginMeta) WithVersion(version string) *PluginMeta {
	m.Version = version
	return m
}

// WithDesc sets the help text shown by the allhelps listing.
func (m *PluginMeta) WithDesc(desc string) *PluginMeta {
	m.Desc = desc
	return m
}
