// Package config loads the style, preset, object and storage catalog that
// drives the prompt form.
//
// A registry is a single JSON or YAML document. Styles may be declared as a
// list or as a mapping keyed by style key; both keep declaration order, which
// decides the fallback style. Loading only fails for empty or undecodable
// input. Dangling references are collected in Registry.Issues and ignored at
// runtime.
//
//	reg, err := config.LoadFile("styles.yaml")
//	if err != nil {
//		return err
//	}
//	for _, issue := range reg.Issues {
//		logger.Warn("registry issue", zap.String("issue", issue.String()))
//	}
//
// Default returns the embedded catalog.
package config
