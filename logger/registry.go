package logger

import (
	"sort"
	"sync"
)

// named holds loggers shared by name across subsystems, such as the
// communication logger used for request traffic.
var named sync.Map // string -> *Logger

// Register stores l under name. A nil l removes the entry.
func Register(name string, l *Logger) {
	if l == nil {
		named.Delete(name)
		return
	}
	named.Store(name, l)
}

// Get returns the logger registered under name, or the global logger tagged
// with name as component.
func Get(name string) *Logger {
	if v, ok := named.Load(name); ok {
		return v.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// Names lists the registered logger names in order.
func Names() []string {
	var names []string
	named.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
