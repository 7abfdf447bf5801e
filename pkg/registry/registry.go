// Package registry maps language names to the change processors the
// recompilation engine applies to their source changes. It allows taskdelta
// to pick language-specific impact rules while defaulting to the
// class-set-based rules shared by the JVM languages.
package registry

import (
	"taskdelta/pkg/recompile"
	"taskdelta/pkg/util"
)

// ProcessorFactory is a function that creates a new change processor.
type ProcessorFactory func() recompile.ChangeProcessor

// factories maps language names to their factory functions. The JVM
// languages share the class-set rules: every class declared by a changed
// file is recompiled and reprocessed.
var factories = map[string]ProcessorFactory{
	"java":   newClassSetProcessor,
	"groovy": newClassSetProcessor,
}

func newClassSetProcessor() recompile.ChangeProcessor {
	return recompile.ClassSetChangeProcessor{}
}

// ProcessorFor creates the change processor registered for a language.
func ProcessorFor(name string) (recompile.ChangeProcessor, bool) {
	factory, ok := factories[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// AvailableLanguages returns the registered language names in sorted order.
func AvailableLanguages() []string {
	return util.SortedKeys(factories)
}

// IsLanguageAvailable checks if a processor factory is registered.
func IsLanguageAvailable(name string) bool {
	_, ok := factories[name]
	return ok
}

// RegisterLanguage registers a processor factory. This allows external
// packages to add languages with their own impact rules.
func RegisterLanguage(name string, factory ProcessorFactory) {
	factories[name] = factory
}
