package webstore

import "strings"

// Separator joins a namespace and a base key.
const Separator = "::"

// composeKey returns "namespace::key", or key alone when namespace is empty.
// Nothing is escaped.
func composeKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + Separator + key
}

func inNamespace(fullKey, namespace string, strict bool) bool {
	token := namespace + Separator
	if strict {
		return strings.HasPrefix(fullKey, token)
	}
	return strings.Contains(fullKey, token)
}
