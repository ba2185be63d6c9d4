// Package config provides the crawlzip configuration and its loaders.
// Configuration comes from an optional YAML file, .env files and the
// process environment, and is passed explicitly to the components.
package config
