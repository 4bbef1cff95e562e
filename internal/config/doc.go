// Package config loads secscan configuration from rc files in the scan root
// and the user's global config directory, with local values layered over
// global ones. It is internal; CLI code maps flags and files into engine
// configuration.
package config
