// Package config defines the settings of the catpoint controller and
// provides helpers to load, validate and save them in YAML format.
package config
