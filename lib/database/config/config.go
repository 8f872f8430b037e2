// Package config reads and writes YAML files under the data root.
// Plugin config lives at data/config/PLUGIN_NAME/config.yaml; plugin data at data/plugins/PLUGIN_NAME/FILE.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the subdir under data root: data/config
	ConfigDirName = "config"
	// ConfigFileName is the default config file name per plugin
	ConfigFileName = "config.yaml"
	// PluginDataDirName is the subdir under data root for plugin-owned state: data/plugins
	PluginDataDirName = "plugins"
)

// Path returns dataDir/config/pluginName/config.yaml.
func Path(dataDir, pluginName string) string {
	return filepath.Join(dataDir, ConfigDirName, pluginName, ConfigFileName)
}

// DataPath returns dataDir/plugins/pluginName/file.
func DataPath(dataDir, pluginName, file string) string {
	return filepath.Join(dataDir, PluginDataDirName, pluginName, file)
}

// Read loads the plugin config into dest. A missing or empty file leaves dest unchanged.
func Read(dataDir, pluginName string, dest any) error {
	return ReadFile(Path(dataDir, pluginName), dest)
}

// Save writes v as the plugin config, creating parent dirs.
func Save(dataDir, pluginName string, v any) error {
	return SaveFile(Path(dataDir, pluginName), v)
}

// Exists reports whether the plugin config file exists.
func Exists(dataDir, pluginName string) bool {
	return FileExists(Path(dataDir, pluginName))
}

// ReadFile unmarshals the YAML file at p into dest. If the file does not exist or is empty,
// no error is returned and dest is unchanged.
func ReadFile(p string, dest any) error {
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config read: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("config unmarshal %s: %w", filepath.Base(p), err)
	}
	return nil
}

// SaveFile marshals v to YAML and replaces the file at p. The write goes through a temp file
// in the same dir so a crash never leaves a truncated file behind.
func SaveFile(p string, v any) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config mkdir: %w", err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("config marshal: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p)+".*.tmp")
	if err != nil {
		return fmt.Errorf("config write: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("config write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("config write: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("config chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("config rename: %w", err)
	}
	return nil
}

// FileExists reports whether p exists.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
